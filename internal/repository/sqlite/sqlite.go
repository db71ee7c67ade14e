// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside the Go binary as a single file.
// No separate database server to install, which makes it the natural
// "persistent but zero-infrastructure" option next to the memory and mongo
// backends. Use ":memory:" for tests.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// TABLE LAYOUT:
//
//	users  (github_login PK, name, avatar, github_token, created_at, updated_at)
//	photos (id PK, name, description, category, user_id, created)
//	tags   (photo_id, user_id)   -- no uniqueness, duplicates are allowed
//
// No FOREIGN KEY constraints link the tables: photos and tags reference users
// by github_login, and the API tolerates dangling references (a tag for a user
// that never logged in resolves to nothing rather than failing).
//
// Every List query orders by rowid, which is SQLite's insertion order.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/photoshare-api/internal/repository"
)

// DB wraps a sql.DB connection pool and hands out the three collections.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/photoshare.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database (great for tests, lost on close)
//
// sql.Open() does NOT actually open a connection, it just creates a pool
// manager. We call Ping() to force an immediate connection and verify it works.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database. Pin the
	// pool to one connection so all queries see the same tables.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads WHILE a write is happening.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Wait for a competing writer instead of failing with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the users collection.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Photos returns the photos collection.
func (db *DB) Photos() *PhotoDB { return &PhotoDB{conn: db.conn} }

// Tags returns the tags collection.
func (db *DB) Tags() *TagDB { return &TagDB{conn: db.conn} }

// Store bundles the collections for the service layer.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:  db.Users(),
		Photos: db.Photos(),
		Tags:   db.Tags(),
	}
}

// migrate creates the tables. CREATE TABLE IF NOT EXISTS is idempotent, so
// this runs on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			github_login TEXT PRIMARY KEY,
			name         TEXT NOT NULL DEFAULT '',
			avatar       TEXT NOT NULL DEFAULT '',
			github_token TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_github_token ON users(github_token);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS photos (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			created     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_photos_user_id ON photos(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating photos table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			photo_id TEXT NOT NULL,
			user_id  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tags_photo_id ON tags(photo_id);
		CREATE INDEX IF NOT EXISTS idx_tags_user_id ON tags(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tags table: %w", err)
	}

	return nil
}
