package graph

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/auth"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
	"github.com/sakif/photoshare-api/internal/repository/memory"
	"github.com/sakif/photoshare-api/internal/seed"
	"github.com/sakif/photoshare-api/internal/service"
)

// =========================================================================
// HARNESS
// =========================================================================

type stubProvider struct{}

func (stubProvider) Authorize(_ context.Context, code string) (*model.GitHubIdentity, error) {
	if code != "good" {
		return nil, apperror.AuthExchange("bad_verification_code")
	}
	return &model.GitHubIdentity{Login: "octocat", Name: "The Octocat", AccessToken: "gho_octo"}, nil
}

type stubSource struct{}

func (stubSource) Fetch(_ context.Context, count int) ([]model.GitHubIdentity, error) {
	out := make([]model.GitHubIdentity, count)
	for i := range out {
		out[i] = model.GitHubIdentity{Login: "fake" + string(rune('a'+i)), AccessToken: "sha" + string(rune('a'+i))}
	}
	return out, nil
}

type harness struct {
	schema *graphql.Schema
	store  repository.Store
}

func newHarness(t *testing.T, store repository.Store) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := seed.Load(context.Background(), store, logger); err != nil {
		t.Fatalf("seed.Load: %v", err)
	}
	users := service.NewAuthService(store.Users, stubProvider{}, stubSource{}, logger)
	photos := service.NewPhotoService(store, "", logger)
	return &harness{schema: NewSchema(NewResolver(users, photos, logger)), store: store}
}

func newSeededHarness(t *testing.T) *harness {
	return newHarness(t, memory.New().Store())
}

// exec runs query and decodes data into out (if non-nil). It returns the
// GraphQL errors.
func (h *harness) exec(t *testing.T, ctx context.Context, query string, vars map[string]interface{}, out interface{}) []gqlError {
	t.Helper()
	resp := h.schema.Exec(ctx, query, "", vars)

	var errs []gqlError
	for _, e := range resp.Errors {
		errs = append(errs, gqlError{Message: e.Message, Extensions: e.Extensions})
	}
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out), "data: %s", resp.Data)
	}
	return errs
}

type gqlError struct {
	Message    string
	Extensions map[string]interface{}
}

func asUser(login string) context.Context {
	return auth.WithUser(context.Background(), &model.User{GitHubLogin: login})
}

// =========================================================================
// SCHEMA
// =========================================================================

func TestNewSchema_Parses(t *testing.T) {
	assert.NotPanics(t, func() { newSeededHarness(t) })
}

// =========================================================================
// QUERIES
// =========================================================================

func TestAllPhotos_Relations(t *testing.T) {
	h := newSeededHarness(t)

	var data struct {
		TotalPhotos int
		AllPhotos   []struct {
			ID          string
			URL         string
			Name        string
			Description *string
			Category    string
			Created     string
			PostedBy    *struct{ GithubLogin string }
			TaggedUsers []struct{ GithubLogin string }
		}
	}
	errs := h.exec(t, context.Background(), `{
		totalPhotos
		allPhotos {
			id url name description category created
			postedBy { githubLogin }
			taggedUsers { githubLogin }
		}
	}`, nil, &data)
	require.Empty(t, errs)

	assert.Equal(t, 3, data.TotalPhotos)
	require.Len(t, data.AllPhotos, 3)

	first := data.AllPhotos[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "http://localhost:4040/img/1.jpg", first.URL)
	assert.Equal(t, "ACTION", first.Category)
	require.NotNil(t, first.PostedBy)
	assert.Equal(t, "gPlake", first.PostedBy.GithubLogin)

	second := data.AllPhotos[1]
	assert.Nil(t, second.Description)
	var tagged []string
	for _, u := range second.TaggedUsers {
		tagged = append(tagged, u.GithubLogin)
	}
	assert.Equal(t, []string{"sSchmidt", "mHattrup", "gPlake"}, tagged)

	assert.Equal(t, "2018-04-15T19:09:57.308Z", data.AllPhotos[2].Created)
}

func TestUser_PostedAndInPhotos(t *testing.T) {
	h := newSeededHarness(t)

	var data struct {
		User *struct {
			Name         *string
			Avatar       *string
			PostedPhotos []struct{ ID string }
			InPhotos     []struct{ ID string }
		}
		Nobody *struct{ Name string }
	}
	errs := h.exec(t, context.Background(), `{
		User(login: "gPlake") { name avatar postedPhotos { id } inPhotos { id } }
		Nobody: User(login: "ghost") { name }
	}`, nil, &data)
	require.Empty(t, errs)

	require.NotNil(t, data.User)
	assert.Equal(t, "Glen Plake", *data.User.Name)
	assert.Nil(t, data.User.Avatar)
	assert.Len(t, data.User.PostedPhotos, 1)
	assert.Len(t, data.User.InPhotos, 2)
	assert.Nil(t, data.Nobody)
}

func TestPhoto_ByID(t *testing.T) {
	h := newSeededHarness(t)

	var data struct {
		Photo   *struct{ Name string }
		Missing *struct{ Name string }
	}
	errs := h.exec(t, context.Background(), `{
		Photo(id: "3") { name }
		Missing: Photo(id: "99") { name }
	}`, nil, &data)
	require.Empty(t, errs)
	assert.Equal(t, "Gunbarrel 25", data.Photo.Name)
	assert.Nil(t, data.Missing)
}

func TestMe(t *testing.T) {
	h := newSeededHarness(t)
	const q = `{ me { githubLogin } totalUsers }`

	var anon struct {
		Me         *struct{ GithubLogin string }
		TotalUsers int
	}
	require.Empty(t, h.exec(t, context.Background(), q, nil, &anon))
	assert.Nil(t, anon.Me)
	assert.Equal(t, 3, anon.TotalUsers)

	var authed struct {
		Me *struct{ GithubLogin string }
	}
	require.Empty(t, h.exec(t, asUser("sSchmidt"), q, nil, &authed))
	require.NotNil(t, authed.Me)
	assert.Equal(t, "sSchmidt", authed.Me.GithubLogin)
}

// =========================================================================
// MUTATIONS
// =========================================================================

const postPhoto = `mutation post($input: PostPhotoInput!) {
	postPhoto(input: $input) { id name category postedBy { githubLogin } }
}`

func TestPostPhoto_Anonymous(t *testing.T) {
	h := newSeededHarness(t)

	errs := h.exec(t, context.Background(), postPhoto, map[string]interface{}{
		"input": map[string]interface{}{"name": "sneaky"},
	}, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, "not authorized", errs[0].Message)
	assert.Equal(t, "UNAUTHORIZED", errs[0].Extensions["code"])

	n, _ := h.store.Photos.Count(context.Background())
	assert.Equal(t, 3, n)
}

func TestPostPhoto_DefaultsCategory(t *testing.T) {
	h := newSeededHarness(t)

	var data struct {
		PostPhoto struct {
			ID       string
			Name     string
			Category string
			PostedBy struct{ GithubLogin string }
		}
	}
	errs := h.exec(t, asUser("mHattrup"), postPhoto, map[string]interface{}{
		"input": map[string]interface{}{"name": "Corbet's"},
	}, &data)
	require.Empty(t, errs)

	assert.Equal(t, "4", data.PostPhoto.ID)
	assert.Equal(t, "PORTRAIT", data.PostPhoto.Category)
	assert.Equal(t, "mHattrup", data.PostPhoto.PostedBy.GithubLogin)
}

func TestPostPhoto_ValidationCode(t *testing.T) {
	h := newSeededHarness(t)

	errs := h.exec(t, asUser("mHattrup"), postPhoto, map[string]interface{}{
		"input": map[string]interface{}{"name": "   ", "category": "ACTION"},
	}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "BAD_USER_INPUT", errs[0].Extensions["code"])
	assert.Equal(t, "name", errs[0].Extensions["field"])
}

func TestTagPhoto(t *testing.T) {
	h := newSeededHarness(t)
	const q = `mutation { tagPhoto(githubLogin: "mHattrup", photoID: "3") { taggedUsers { githubLogin } } }`

	errs := h.exec(t, context.Background(), q, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "UNAUTHORIZED", errs[0].Extensions["code"])

	var data struct {
		TagPhoto struct {
			TaggedUsers []struct{ GithubLogin string }
		}
	}
	require.Empty(t, h.exec(t, asUser("sSchmidt"), q, nil, &data))
	require.Len(t, data.TagPhoto.TaggedUsers, 1)
	assert.Equal(t, "mHattrup", data.TagPhoto.TaggedUsers[0].GithubLogin)
}

func TestGithubAuth(t *testing.T) {
	h := newSeededHarness(t)
	const q = `mutation auth($code: String!) { githubAuth(code: $code) { token user { githubLogin name } } }`

	var data struct {
		GithubAuth struct {
			Token string
			User  struct {
				GithubLogin string
				Name        string
			}
		}
	}
	require.Empty(t, h.exec(t, context.Background(), q, map[string]interface{}{"code": "good"}, &data))
	assert.Equal(t, "gho_octo", data.GithubAuth.Token)
	assert.Equal(t, "octocat", data.GithubAuth.User.GithubLogin)

	errs := h.exec(t, context.Background(), q, map[string]interface{}{"code": "stale"}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "bad_verification_code", errs[0].Message)
	assert.Equal(t, "AUTH_EXCHANGE_FAILED", errs[0].Extensions["code"])
}

func TestAddFakeUsersAndFakeUserAuth(t *testing.T) {
	h := newSeededHarness(t)

	var added struct {
		AddFakeUsers []struct{ GithubLogin string }
	}
	require.Empty(t, h.exec(t, context.Background(), `mutation { addFakeUsers { githubLogin } }`, nil, &added))
	require.Len(t, added.AddFakeUsers, 1, "count defaults to 1")

	var login struct {
		FakeUserAuth struct{ Token string }
	}
	require.Empty(t, h.exec(t, context.Background(),
		`mutation { fakeUserAuth(githubLogin: "fakea") { token } }`, nil, &login))
	assert.Equal(t, "shaa", login.FakeUserAuth.Token)

	errs := h.exec(t, context.Background(), `mutation { fakeUserAuth(githubLogin: "ghost") { token } }`, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "NOT_FOUND", errs[0].Extensions["code"])

	errs = h.exec(t, context.Background(), `mutation { addFakeUsers(count: 0) { githubLogin } }`, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "BAD_USER_INPUT", errs[0].Extensions["code"])
}

// =========================================================================
// ERRORS
// =========================================================================

type failingPhotos struct {
	repository.PhotoRepository
}

func (failingPhotos) List(context.Context) ([]model.Photo, error) {
	return nil, errors.New("sqlite: disk I/O error")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	store := memory.New().Store()
	h := newHarness(t, store)
	h.store.Photos = failingPhotos{store.Photos}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewAuthService(store.Users, stubProvider{}, stubSource{}, logger)
	photos := service.NewPhotoService(h.store, "", logger)
	h.schema = NewSchema(NewResolver(users, photos, logger))

	errs := h.exec(t, context.Background(), `{ allPhotos { id } }`, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "internal server error", errs[0].Message)
	assert.Equal(t, "INTERNAL", errs[0].Extensions["code"])
}

// =========================================================================
// DATETIME
// =========================================================================

func TestDateTime_Marshal(t *testing.T) {
	loc := time.FixedZone("MST", -7*3600)
	b, err := json.Marshal(DateTime{time.Date(2018, 4, 15, 12, 9, 57, 308000000, loc)})
	require.NoError(t, err)
	assert.Equal(t, `"2018-04-15T19:09:57.308Z"`, string(b))
}

func TestDateTime_Unmarshal(t *testing.T) {
	var d DateTime
	require.NoError(t, d.UnmarshalGraphQL("2018-04-15T19:09:57.308Z"))
	assert.Equal(t, 308, d.Nanosecond()/int(time.Millisecond))

	require.NoError(t, d.UnmarshalGraphQL(int32(0)))
	assert.Equal(t, int64(0), d.Unix())

	assert.Error(t, d.UnmarshalGraphQL("3-28-1977"))
	assert.Error(t, d.UnmarshalGraphQL(true))
	assert.True(t, DateTime{}.ImplementsGraphQLType("DateTime"))
}
