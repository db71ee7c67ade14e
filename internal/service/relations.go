package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
)

// The joins below never fail because a match is missing: no poster is nil,
// no photos is an empty slice, and a tag pointing at an unknown record is
// skipped. Only store errors are returned.
//
// Each join reads whole collections and filters in memory. The collections
// are small and the repositories expose no secondary lookups beyond login
// and ID.

// PostedBy returns the user who posted photo, or nil.
func (s *PhotoService) PostedBy(ctx context.Context, photo *model.Photo) (*model.User, error) {
	user, err := s.store.Users.FindByLogin(ctx, photo.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/photo: poster of %s: %w", photo.ID, err)
	}
	return user, nil
}

// PostedPhotos returns the photos user posted, in store order.
func (s *PhotoService) PostedPhotos(ctx context.Context, user *model.User) ([]model.Photo, error) {
	photos, err := s.store.Photos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/photo: photos of %s: %w", user.GitHubLogin, err)
	}

	posted := []model.Photo{}
	for _, p := range photos {
		if p.UserID == user.GitHubLogin {
			posted = append(posted, p)
		}
	}
	return posted, nil
}

// TaggedUsers returns the users tagged in photo, in tag order. A user tagged
// twice appears twice.
func (s *PhotoService) TaggedUsers(ctx context.Context, photo *model.Photo) ([]model.User, error) {
	tags, err := s.store.Tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/photo: tags of %s: %w", photo.ID, err)
	}
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/photo: tagged users of %s: %w", photo.ID, err)
	}

	byLogin := make(map[string]model.User, len(users))
	for _, u := range users {
		byLogin[u.GitHubLogin] = u
	}

	tagged := []model.User{}
	for _, t := range tags {
		if t.PhotoID != photo.ID {
			continue
		}
		u, ok := byLogin[t.UserID]
		if !ok {
			s.logger.Debug("skipping tag of unknown user",
				slog.String("photoID", t.PhotoID),
				slog.String("userID", t.UserID),
			)
			continue
		}
		tagged = append(tagged, u)
	}
	return tagged, nil
}

// InPhotos returns the photos user is tagged in, in tag order.
func (s *PhotoService) InPhotos(ctx context.Context, user *model.User) ([]model.Photo, error) {
	tags, err := s.store.Tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/photo: tags of %s: %w", user.GitHubLogin, err)
	}
	photos, err := s.store.Photos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/photo: photos with %s: %w", user.GitHubLogin, err)
	}

	byID := make(map[string]model.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}

	in := []model.Photo{}
	for _, t := range tags {
		if t.UserID != user.GitHubLogin {
			continue
		}
		p, ok := byID[t.PhotoID]
		if !ok {
			s.logger.Debug("skipping tag of unknown photo",
				slog.String("photoID", t.PhotoID),
				slog.String("userID", t.UserID),
			)
			continue
		}
		in = append(in, p)
	}
	return in, nil
}
