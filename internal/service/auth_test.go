package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
	"github.com/sakif/photoshare-api/internal/repository/memory"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeProvider is a hand-written IdentityProvider. Keeping it next to the
// tests shows exactly what each scenario returns.
type fakeProvider struct {
	identities map[string]*model.GitHubIdentity // keyed by code
	err        error
	calls      int
}

func (f *fakeProvider) Authorize(_ context.Context, code string) (*model.GitHubIdentity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.identities[code]
	if !ok {
		return nil, apperror.AuthExchange("bad_verification_code")
	}
	copied := *id
	return &copied, nil
}

type fakeSource struct {
	identities []model.GitHubIdentity
	err        error
	asked      int
}

func (f *fakeSource) Fetch(_ context.Context, count int) ([]model.GitHubIdentity, error) {
	f.asked = count
	if f.err != nil {
		return nil, f.err
	}
	return f.identities[:count], nil
}

// brokenUsers fails every call, simulating a store outage.
type brokenUsers struct {
	repository.UserRepository
	err error
}

func (b brokenUsers) FindByToken(context.Context, string) (*model.User, error) { return nil, b.err }
func (b brokenUsers) Upsert(context.Context, *model.User) error                { return b.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService returns an AuthService over a fresh memory store.
func newTestAuthService(t *testing.T, provider IdentityProvider, source IdentitySource) (*AuthService, repository.Store) {
	t.Helper()
	store := memory.New().Store()
	return NewAuthService(store.Users, provider, source, testLogger()), store
}

func glenIdentity() *model.GitHubIdentity {
	return &model.GitHubIdentity{
		Login:       "gPlake",
		Name:        "Glen Plake",
		AvatarURL:   "https://avatars.example/gplake.png",
		AccessToken: "gho_glen",
	}
}

// =========================================================================
// UpsertUser / GitHubAuth TESTS
// =========================================================================

func TestGitHubAuth_NewUser(t *testing.T) {
	provider := &fakeProvider{identities: map[string]*model.GitHubIdentity{"code-1": glenIdentity()}}
	svc, store := newTestAuthService(t, provider, nil)

	payload, err := svc.GitHubAuth(context.Background(), "code-1")
	require.NoError(t, err)

	assert.Equal(t, "gho_glen", payload.Token)
	assert.Equal(t, "gPlake", payload.User.GitHubLogin)
	assert.Equal(t, "Glen Plake", payload.User.Name)
	assert.Equal(t, "https://avatars.example/gplake.png", payload.User.Avatar)

	// The returned token resolves to the same user on the next request.
	me, err := svc.ResolveCurrentUser(context.Background(), payload.Token)
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "gPlake", me.GitHubLogin)

	n, _ := store.Users.Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestUpsertUser_IsIdempotentAndReplaces(t *testing.T) {
	svc, store := newTestAuthService(t, &fakeProvider{}, nil)
	ctx := context.Background()

	_, err := svc.UpsertUser(ctx, glenIdentity())
	require.NoError(t, err)

	second := glenIdentity()
	second.AvatarURL = ""
	second.AccessToken = "gho_glen_2"
	payload, err := svc.UpsertUser(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, "gho_glen_2", payload.Token)

	users, _ := store.Users.List(ctx)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Avatar, "stale avatar must not survive a re-login")

	// The old token no longer identifies anyone.
	me, err := svc.ResolveCurrentUser(ctx, "gho_glen")
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestUpsertUser_RequiresLogin(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeProvider{}, nil)

	_, err := svc.UpsertUser(context.Background(), &model.GitHubIdentity{AccessToken: "x"})
	assert.Error(t, err)
	_, err = svc.UpsertUser(context.Background(), nil)
	assert.Error(t, err)
}

func TestGitHubAuth_ProviderErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rejected code", apperror.AuthExchange("bad_verification_code"), apperror.ErrAuthExchange},
		{"unreachable", apperror.Transport("github token request", context.DeadlineExceeded), apperror.ErrTransport},
		{"garbage", apperror.Protocol("github token response", errors.New("not json")), apperror.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestAuthService(t, &fakeProvider{err: tt.err}, nil)

			_, err := svc.GitHubAuth(context.Background(), "code")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			n, _ := store.Users.Count(context.Background())
			assert.Zero(t, n, "a failed exchange must not write a user")
		})
	}
}

func TestGitHubAuth_EmptyCode(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestAuthService(t, provider, nil)

	_, err := svc.GitHubAuth(context.Background(), "  ")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Zero(t, provider.calls)
}

func TestGitHubAuth_StoreFailure(t *testing.T) {
	provider := &fakeProvider{identities: map[string]*model.GitHubIdentity{"c": glenIdentity()}}
	svc := NewAuthService(brokenUsers{err: errors.New("disk full")}, provider, nil, testLogger())

	_, err := svc.GitHubAuth(context.Background(), "c")
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrAuthExchange))
}

// =========================================================================
// ResolveCurrentUser TESTS
// =========================================================================

func TestResolveCurrentUser(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeProvider{}, nil)
	ctx := context.Background()
	_, err := svc.UpsertUser(ctx, glenIdentity())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty token is anonymous", "", ""},
		{"unknown token is anonymous", "nope", ""},
		{"known token", "gho_glen", "gPlake"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.ResolveCurrentUser(ctx, tt.token)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, u)
				return
			}
			require.NotNil(t, u)
			assert.Equal(t, tt.want, u.GitHubLogin)
		})
	}
}

func TestResolveCurrentUser_StoreFailure(t *testing.T) {
	svc := NewAuthService(brokenUsers{err: errors.New("connection reset")}, nil, nil, testLogger())

	u, err := svc.ResolveCurrentUser(context.Background(), "tok")
	assert.Nil(t, u)
	assert.Error(t, err)
}

// =========================================================================
// AddFakeUsers / FakeUserAuth TESTS
// =========================================================================

func TestAddFakeUsers(t *testing.T) {
	source := &fakeSource{identities: []model.GitHubIdentity{
		{Login: "bluefish42", Name: "Ada Lovelace", AccessToken: "sha-1"},
		{Login: "redcat7", Name: "Alan Turing", AccessToken: "sha-2"},
		{Login: "unused", AccessToken: "sha-3"},
	}}
	svc, _ := newTestAuthService(t, &fakeProvider{}, source)
	ctx := context.Background()

	users, err := svc.AddFakeUsers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, source.asked)
	require.Len(t, users, 2)
	assert.Equal(t, "bluefish42", users[0].GitHubLogin)
	assert.Equal(t, "redcat7", users[1].GitHubLogin)

	// A fake user can log in with fakeUserAuth and then act with its token.
	payload, err := svc.FakeUserAuth(ctx, "redcat7")
	require.NoError(t, err)
	assert.Equal(t, "sha-2", payload.Token)

	me, err := svc.ResolveCurrentUser(ctx, payload.Token)
	require.NoError(t, err)
	assert.Equal(t, "redcat7", me.GitHubLogin)
}

func TestAddFakeUsers_CountBounds(t *testing.T) {
	source := &fakeSource{}
	svc, _ := newTestAuthService(t, &fakeProvider{}, source)

	for _, n := range []int{0, -1, MaxFakeUsers + 1} {
		_, err := svc.AddFakeUsers(context.Background(), n)
		assert.True(t, errors.Is(err, apperror.ErrValidation), "count %d: got %v", n, err)
	}
	assert.Zero(t, source.asked, "the source must not be called for an invalid count")
}

func TestAddFakeUsers_SourceFailure(t *testing.T) {
	source := &fakeSource{err: apperror.Transport("randomuser request", errors.New("dial tcp: refused"))}
	svc, store := newTestAuthService(t, &fakeProvider{}, source)

	_, err := svc.AddFakeUsers(context.Background(), 3)
	assert.True(t, errors.Is(err, apperror.ErrTransport))

	n, _ := store.Users.Count(context.Background())
	assert.Zero(t, n)
}

func TestFakeUserAuth_UnknownLogin(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeProvider{}, nil)

	_, err := svc.FakeUserAuth(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// =========================================================================
// USER QUERY TESTS
// =========================================================================

func TestUserQueries(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeProvider{}, nil)
	ctx := context.Background()
	_, err := svc.UpsertUser(ctx, glenIdentity())
	require.NoError(t, err)

	n, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := svc.AllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	u, err := svc.UserByLogin(ctx, "gPlake")
	require.NoError(t, err)
	assert.Equal(t, "Glen Plake", u.Name)

	missing, err := svc.UserByLogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
