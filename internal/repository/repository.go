// Package repository declares the storage contracts the services depend on.
//
// The three collections mirror a small document store:
//
//	users  - keyed by GitHubLogin, written with insert-or-replace
//	photos - keyed by a backend-assigned string ID, append-only
//	tags   - (photoID, userID) pairs, append-only, duplicates allowed
//
// Implementations live in sub-packages (memory, sqlite, mongo). Every
// implementation must:
//   - return records in insertion order from List
//   - return an apperror.ErrNotFound error from single-record lookups that miss
//   - expose Photo.ID as a string, whatever the native identifier type is
package repository

import (
	"context"

	"github.com/sakif/photoshare-api/internal/model"
)

type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	FindByLogin(ctx context.Context, githubLogin string) (*model.User, error)
	FindByToken(ctx context.Context, token string) (*model.User, error)
	// Upsert replaces the whole record stored under user.GitHubLogin, or
	// inserts it. Fields from an older record are not merged in.
	Upsert(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int, error)
}

type PhotoRepository interface {
	List(ctx context.Context) ([]model.Photo, error)
	GetByID(ctx context.Context, id string) (*model.Photo, error)
	// Create stores the photo. If photo.ID is empty the backend assigns one
	// and writes it back into photo.
	Create(ctx context.Context, photo *model.Photo) error
	Count(ctx context.Context) (int, error)
}

type TagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) error
}

// Store bundles the three collections. It is the "db" every resolver sees.
type Store struct {
	Users  UserRepository
	Photos PhotoRepository
	Tags   TagRepository
}
