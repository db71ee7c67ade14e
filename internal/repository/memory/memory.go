// Package memory implements the repository interfaces on plain Go slices.
//
// It is the default backend: nothing to install, and it keeps the photo,
// user and tag arrays the API started out with. Data lives for the lifetime
// of the process.
//
// CONCURRENCY:
// net/http serves each request on its own goroutine, so the slices are
// shared mutable state. A single sync.RWMutex guards all three collections:
// readers take RLock and copy what they return, writers take Lock for the
// duration of one insert or replace. That gives the same guarantee a
// document store gives for a single write, and no more.
package memory

import (
	"sync"

	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

// DB holds the three collections.
type DB struct {
	mu     sync.RWMutex
	users  []model.User
	photos []model.Photo
	tags   []model.Tag

	// lastID is the highest numeric photo ID handed out or seen so far.
	// New photos get lastID+1, so they never collide with seeded IDs.
	lastID int
}

// New returns an empty in-memory database.
func New() *DB {
	return &DB{}
}

// Users returns the users collection.
func (db *DB) Users() *UserTable { return &UserTable{db: db} }

// Photos returns the photos collection.
func (db *DB) Photos() *PhotoTable { return &PhotoTable{db: db} }

// Tags returns the tags collection.
func (db *DB) Tags() *TagTable { return &TagTable{db: db} }

// Store bundles the collections for the service layer.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:  db.Users(),
		Photos: db.Photos(),
		Tags:   db.Tags(),
	}
}

// Close is a no-op; it lets the server treat every backend the same way.
func (db *DB) Close() error { return nil }
