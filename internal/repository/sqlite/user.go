package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `github_login, name, avatar, github_token, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.GitHubLogin,
		&u.Name,
		&u.Avatar,
		&u.GitHubToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// List returns every user in insertion order.
func (db *UserDB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// FindByLogin retrieves a user by their GitHub login.
// Returns apperror.ErrNotFound if no user exists with that login.
func (db *UserDB) FindByLogin(ctx context.Context, githubLogin string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_login = ?`, githubLogin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", githubLogin)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", githubLogin, err)
	}
	return &u, nil
}

// FindByToken retrieves the user whose stored GitHub token equals token.
//
// Users created without a token store '' in github_token, so an empty token
// is rejected up front instead of matching them.
func (db *UserDB) FindByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.NotFound("user", "(empty token)")
	}

	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_token = ? ORDER BY rowid LIMIT 1`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", "(token)")
		}
		// Never put the token itself into an error message.
		return nil, fmt.Errorf("sqlite: getting user by token: %w", err)
	}
	return &u, nil
}

// Upsert inserts the user, or replaces every profile field of the existing
// row with the same github_login.
//
// WHY ON CONFLICT ... DO UPDATE AND NOT INSERT OR REPLACE?
// INSERT OR REPLACE deletes the old row and inserts a new one, which gives it
// a new rowid and moves the user to the end of List(). DO UPDATE rewrites the
// row in place. Every column except created_at is overwritten, so nothing
// from the previous login survives (a removed avatar stays removed).
func (db *UserDB) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (github_login, name, avatar, github_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_login) DO UPDATE SET
			name         = excluded.name,
			avatar       = excluded.avatar,
			github_token = excluded.github_token,
			updated_at   = excluded.updated_at`,
		user.GitHubLogin,
		user.Name,
		user.Avatar,
		user.GitHubToken,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.GitHubLogin, err)
	}

	// created_at is only set by the INSERT branch; read back whichever value won.
	err = db.conn.QueryRowContext(ctx,
		`SELECT created_at FROM users WHERE github_login = ?`, user.GitHubLogin,
	).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: reading back user %s: %w", user.GitHubLogin, err)
	}

	return nil
}

// Count returns the number of users.
func (db *UserDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}
