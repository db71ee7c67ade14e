// Package seed loads the sample photos, users and tags into an empty store.
//
// The three skiers and their three photos are the data the API started
// with before it had a database. They are only written when the store has
// no users and no photos, so restarting a server backed by SQLite or MongoDB
// never duplicates them.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

// Users are the sample users. None of them has a GitHub token; fakeUserAuth
// gives them one the first time they log in.
func Users() []model.User {
	return []model.User{
		{GitHubLogin: "mHattrup", Name: "Mike Hattrup"},
		{GitHubLogin: "gPlake", Name: "Glen Plake"},
		{GitHubLogin: "sSchmidt", Name: "Scot Schmidt"},
	}
}

// Photos are the sample photos, keyed "1" to "3".
func Photos() []model.Photo {
	return []model.Photo{
		{
			ID:          "1",
			Name:        "Dropping the Heart Chute",
			Description: "The heart chute is one of my favorite chutes",
			Category:    model.CategoryAction,
			UserID:      "gPlake",
			Created:     time.Date(1977, time.March, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       "2",
			Name:     "Enjoying the sunshine",
			Category: model.CategorySelfie,
			UserID:   "sSchmidt",
			Created:  time.Date(1985, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          "3",
			Name:        "Gunbarrel 25",
			Description: "25 laps on gunbarrel today",
			Category:    model.CategoryLandscape,
			UserID:      "sSchmidt",
			Created:     time.Date(2018, time.April, 15, 19, 9, 57, 308*int(time.Millisecond), time.UTC),
		},
	}
}

// Tags are the sample tags. Photo 2 has three people in it.
func Tags() []model.Tag {
	return []model.Tag{
		{PhotoID: "1", UserID: "gPlake"},
		{PhotoID: "2", UserID: "sSchmidt"},
		{PhotoID: "2", UserID: "mHattrup"},
		{PhotoID: "2", UserID: "gPlake"},
	}
}

// Load writes the sample data if the store is empty. It reports whether
// anything was written.
func Load(ctx context.Context, store repository.Store, logger *slog.Logger) (bool, error) {
	users, err := store.Users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: counting users: %w", err)
	}
	photos, err := store.Photos.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: counting photos: %w", err)
	}
	if users > 0 || photos > 0 {
		logger.Debug("store not empty, skipping sample data",
			slog.Int("users", users),
			slog.Int("photos", photos),
		)
		return false, nil
	}

	for _, u := range Users() {
		if err := store.Users.Upsert(ctx, &u); err != nil {
			return false, fmt.Errorf("seed: user %s: %w", u.GitHubLogin, err)
		}
	}
	for _, p := range Photos() {
		if err := store.Photos.Create(ctx, &p); err != nil {
			return false, fmt.Errorf("seed: photo %s: %w", p.ID, err)
		}
	}
	for _, t := range Tags() {
		if err := store.Tags.Create(ctx, &t); err != nil {
			return false, fmt.Errorf("seed: tag (%s, %s): %w", t.PhotoID, t.UserID, err)
		}
	}

	logger.Info("loaded sample data",
		slog.Int("users", len(Users())),
		slog.Int("photos", len(Photos())),
		slog.Int("tags", len(Tags())),
	)
	return true, nil
}
