package memory

import (
	"context"
	"slices"
	"time"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

var _ repository.UserRepository = (*UserTable)(nil)

// UserTable is the users collection of a DB.
type UserTable struct {
	db *DB
}

func (t *UserTable) List(_ context.Context) ([]model.User, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return slices.Clone(t.db.users), nil
}

func (t *UserTable) FindByLogin(_ context.Context, githubLogin string) (*model.User, error) {
	return t.findOne(func(u model.User) bool { return u.GitHubLogin == githubLogin }, githubLogin)
}

func (t *UserTable) FindByToken(_ context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.NotFound("user", "(empty token)")
	}
	return t.findOne(func(u model.User) bool { return u.GitHubToken == token }, "(token)")
}

func (t *UserTable) findOne(match func(model.User) bool, key string) (*model.User, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	i := slices.IndexFunc(t.db.users, match)
	if i < 0 {
		return nil, apperror.NotFound("user", key)
	}
	u := t.db.users[i]
	return &u, nil
}

// Upsert replaces the user in place (keeping its position in the slice) or
// appends it. The stored value is a copy of *user.
func (t *UserTable) Upsert(_ context.Context, user *model.User) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	now := time.Now()
	i := slices.IndexFunc(t.db.users, func(u model.User) bool {
		return u.GitHubLogin == user.GitHubLogin
	})
	if i >= 0 {
		user.CreatedAt = t.db.users[i].CreatedAt
		user.UpdatedAt = now
		t.db.users[i] = *user
		return nil
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	t.db.users = append(t.db.users, *user)
	return nil
}

func (t *UserTable) Count(_ context.Context) (int, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return len(t.db.users), nil
}
