package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails to compile if *Y stops implementing X, so a
// missing method is reported here instead of at the distant call site that
// passes *PhotoDB as a repository.PhotoRepository.
var (
	_ repository.PhotoRepository = (*PhotoDB)(nil)
	_ repository.TagRepository   = (*TagDB)(nil)
)

// PhotoDB is the photos table.
type PhotoDB struct {
	conn *sql.DB
}

const photoColumns = `id, name, description, category, user_id, created`

func scanPhoto(row interface{ Scan(...any) error }) (model.Photo, error) {
	var p model.Photo
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.UserID,
		&p.Created,
	)
	return p, err
}

// Create inserts a new photo.
//
// ID GENERATION WITH xid:
// xid generates globally unique IDs that are 20 chars, URL-safe and sortable
// by creation time (e.g. "cv37rs3pp9olc6atsptg"). They are already strings,
// so no normalization is needed on the way out. A photo that arrives with an
// ID (seed data) keeps it.
//
// POINTER RECEIVER (*model.Photo):
// The caller's photo gets the generated ID written back.
func (db *PhotoDB) Create(ctx context.Context, photo *model.Photo) error {
	if photo.ID == "" {
		photo.ID = xid.New().String()
	}

	// The ? placeholders are filled in order; the driver escapes the values.
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO photos (id, name, description, category, user_id, created)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		photo.ID,
		photo.Name,
		photo.Description,
		string(photo.Category),
		photo.UserID,
		photo.Created,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating photo: %w", err)
	}

	return nil
}

// GetByID retrieves a single photo by its ID.
//
// sql.ErrNoRows just means "no matching row exists". We translate it to the
// app's NotFound error so callers can tell a miss from a database failure.
func (db *PhotoDB) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	p, err := scanPhoto(db.conn.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("photo", id)
		}
		return nil, fmt.Errorf("sqlite: getting photo %s: %w", id, err)
	}

	return &p, nil
}

// List retrieves every photo in insertion order.
//
// defer rows.Close() is critical: sql.Rows holds a connection from the pool,
// and a forgotten Close leaks it. Always check rows.Err() after the loop, it
// catches errors that happened DURING iteration.
func (db *PhotoDB) List(ctx context.Context) ([]model.Photo, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing photos: %w", err)
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning photo row: %w", err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating photos: %w", err)
	}

	return photos, nil
}

// Count returns the number of photos.
func (db *PhotoDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting photos: %w", err)
	}
	return n, nil
}

// TagDB is the tags table.
type TagDB struct {
	conn *sql.DB
}

// Create appends a tag. The table has no unique index, so the same pair can
// be stored twice.
func (db *TagDB) Create(ctx context.Context, tag *model.Tag) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (photo_id, user_id) VALUES (?, ?)`,
		tag.PhotoID,
		tag.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating tag (%s, %s): %w", tag.PhotoID, tag.UserID, err)
	}
	return nil
}

// List returns every tag in insertion order.
func (db *TagDB) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT photo_id, user_id FROM tags ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.PhotoID, &t.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}
