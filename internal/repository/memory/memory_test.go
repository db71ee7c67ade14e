package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
)

func TestUserUpsert_InsertThenReplace(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	first := &model.User{GitHubLogin: "gPlake", Name: "Glen Plake", Avatar: "old.png", GitHubToken: "tok-1"}
	require.NoError(t, users.Upsert(ctx, first))

	// Second login by the same identity: no avatar this time.
	second := &model.User{GitHubLogin: "gPlake", Name: "Glen", GitHubToken: "tok-2"}
	require.NoError(t, users.Upsert(ctx, second))

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert must replace, not duplicate")

	got, err := users.FindByLogin(ctx, "gPlake")
	require.NoError(t, err)
	assert.Equal(t, "Glen", got.Name)
	assert.Empty(t, got.Avatar, "stale avatar from the first login must be discarded")
	assert.Equal(t, "tok-2", got.GitHubToken)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
}

func TestUserUpsert_KeepsPosition(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	for _, login := range []string{"mHattrup", "gPlake", "sSchmidt"} {
		require.NoError(t, users.Upsert(ctx, &model.User{GitHubLogin: login}))
	}
	require.NoError(t, users.Upsert(ctx, &model.User{GitHubLogin: "gPlake", Name: "Glen Plake"}))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "mHattrup", all[0].GitHubLogin)
	assert.Equal(t, "gPlake", all[1].GitHubLogin)
	assert.Equal(t, "Glen Plake", all[1].Name)
}

func TestUserFindByToken(t *testing.T) {
	ctx := context.Background()
	users := New().Users()
	require.NoError(t, users.Upsert(ctx, &model.User{GitHubLogin: "sSchmidt", GitHubToken: "secret"}))

	u, err := users.FindByToken(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sSchmidt", u.GitHubLogin)

	_, err = users.FindByToken(ctx, "wrong")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	// A user without a token must not match an empty bearer token.
	require.NoError(t, users.Upsert(ctx, &model.User{GitHubLogin: "mHattrup"}))
	_, err = users.FindByToken(ctx, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestPhotoCreate_AssignsOrdinalIDs(t *testing.T) {
	ctx := context.Background()
	photos := New().Photos()

	a := &model.Photo{Name: "a"}
	b := &model.Photo{Name: "b"}
	require.NoError(t, photos.Create(ctx, a))
	require.NoError(t, photos.Create(ctx, b))

	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2", b.ID)
}

func TestPhotoCreate_SkipsSeededIDs(t *testing.T) {
	ctx := context.Background()
	photos := New().Photos()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, photos.Create(ctx, &model.Photo{ID: id, Created: time.Now()}))
	}
	p := &model.Photo{Name: "fresh"}
	require.NoError(t, photos.Create(ctx, p))
	assert.Equal(t, "4", p.ID)

	got, err := photos.GetByID(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)

	_, err = photos.GetByID(ctx, "99")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestTags_AllowDuplicates(t *testing.T) {
	ctx := context.Background()
	tags := New().Tags()

	tag := &model.Tag{PhotoID: "2", UserID: "gPlake"}
	require.NoError(t, tags.Create(ctx, tag))
	require.NoError(t, tags.Create(ctx, tag))

	all, err := tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	db := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.Photos().Create(ctx, &model.Photo{Name: "p"})
			_, _ = db.Users().List(ctx)
		}()
	}
	wg.Wait()

	n, err := db.Photos().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	// Every photo got a distinct ID.
	all, _ := db.Photos().List(ctx)
	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}
