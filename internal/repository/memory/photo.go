package memory

import (
	"context"
	"slices"
	"strconv"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

var (
	_ repository.PhotoRepository = (*PhotoTable)(nil)
	_ repository.TagRepository   = (*TagTable)(nil)
)

// PhotoTable is the photos collection of a DB.
type PhotoTable struct {
	db *DB
}

func (t *PhotoTable) List(_ context.Context) ([]model.Photo, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return slices.Clone(t.db.photos), nil
}

func (t *PhotoTable) GetByID(_ context.Context, id string) (*model.Photo, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	i := slices.IndexFunc(t.db.photos, func(p model.Photo) bool { return p.ID == id })
	if i < 0 {
		return nil, apperror.NotFound("photo", id)
	}
	p := t.db.photos[i]
	return &p, nil
}

// Create appends the photo.
//
// ID ASSIGNMENT:
// IDs are an ordinal counter rendered as a decimal string ("1", "2", ...).
// A photo that arrives with an ID already set (seed data) keeps it, and if
// that ID is numeric the counter jumps past it so later photos cannot reuse it.
func (t *PhotoTable) Create(_ context.Context, photo *model.Photo) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	if photo.ID == "" {
		t.db.lastID++
		photo.ID = strconv.Itoa(t.db.lastID)
	} else if n, err := strconv.Atoi(photo.ID); err == nil && n > t.db.lastID {
		t.db.lastID = n
	}

	t.db.photos = append(t.db.photos, *photo)
	return nil
}

func (t *PhotoTable) Count(_ context.Context) (int, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return len(t.db.photos), nil
}

// TagTable is the tags collection of a DB.
type TagTable struct {
	db *DB
}

func (t *TagTable) List(_ context.Context) ([]model.Tag, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return slices.Clone(t.db.tags), nil
}

func (t *TagTable) Create(_ context.Context, tag *model.Tag) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.tags = append(t.db.tags, *tag)
	return nil
}
