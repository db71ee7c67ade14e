// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Transport (GraphQL resolvers, HTTP handlers) → parses requests, writes responses
//	Service (business layer)                     → validates, enforces rules, joins records
//	Repository (data layer)                      → reads/writes the store
//
// Services take repository interfaces, never a concrete backend, so the same
// code runs against memory, SQLite and MongoDB, and tests can use the memory
// store directly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/metrics"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

// Validation constants.
const (
	MaxPhotoNameLength = 100
)

// DefaultImageBaseURL is where photo files are served from.
const DefaultImageBaseURL = "http://localhost:4040"

// PhotoService handles photos, tags, and the joins between photos and users.
type PhotoService struct {
	store        repository.Store
	imageBaseURL string
	logger       *slog.Logger

	// now is time.Now outside tests.
	now func() time.Time
}

// NewPhotoService creates a PhotoService. An empty imageBaseURL means
// DefaultImageBaseURL.
func NewPhotoService(store repository.Store, imageBaseURL string, logger *slog.Logger) *PhotoService {
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	return &PhotoService{
		store:        store,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

// URL is where the image file of photo is served.
func (s *PhotoService) URL(photo *model.Photo) string {
	return fmt.Sprintf("%s/img/%s.jpg", s.imageBaseURL, photo.ID)
}

// Create validates input and stores a new photo posted by currentUser.
//
// The poster is ALWAYS currentUser: the input has no user field, so a client
// cannot post on someone else's behalf. An anonymous caller gets
// apperror.ErrUnauthorized and nothing is written.
func (s *PhotoService) Create(ctx context.Context, input model.PhotoInput, currentUser *model.User) (*model.Photo, error) {
	if currentUser == nil {
		return nil, apperror.Unauthorized()
	}

	// === VALIDATION ===
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "photo name is required")
	}
	if utf8.RuneCountInString(name) > MaxPhotoNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("photo name must be %d characters or less", MaxPhotoNameLength))
	}

	category := input.Category
	if category == "" {
		category = model.DefaultCategory
	}
	if !category.Valid() {
		return nil, apperror.ValidationFailed("category",
			fmt.Sprintf("unknown photo category %q", category))
	}

	// === CREATE THE MODEL ===
	// The store assigns the ID.
	photo := &model.Photo{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		UserID:      currentUser.GitHubLogin,
		Created:     s.now().UTC(),
	}

	if err := s.store.Photos.Create(ctx, photo); err != nil {
		s.logger.Error("failed to create photo",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/photo: creating photo: %w", err)
	}

	metrics.PhotosPostedTotal.Inc()
	s.logger.Info("photo posted",
		slog.String("id", photo.ID),
		slog.String("userID", photo.UserID),
	)

	return photo, nil
}

// TagPhoto records that githubLogin appears in photo photoID.
//
// Both records must exist. Tagging the same pair twice stores two tags.
func (s *PhotoService) TagPhoto(ctx context.Context, photoID, githubLogin string, currentUser *model.User) (*model.Photo, error) {
	if currentUser == nil {
		return nil, apperror.Unauthorized()
	}

	photo, err := s.store.Photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users.FindByLogin(ctx, githubLogin); err != nil {
		return nil, err
	}

	tag := &model.Tag{PhotoID: photo.ID, UserID: githubLogin}
	if err := s.store.Tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("service/photo: tagging photo %s: %w", photo.ID, err)
	}

	metrics.TagsCreatedTotal.Inc()
	s.logger.Info("photo tagged",
		slog.String("photoID", photo.ID),
		slog.String("userID", githubLogin),
		slog.String("by", currentUser.GitHubLogin),
	)
	return photo, nil
}

// All returns every photo in store order.
func (s *PhotoService) All(ctx context.Context) ([]model.Photo, error) {
	photos, err := s.store.Photos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/photo: listing photos: %w", err)
	}
	return photos, nil
}

// Count returns the number of photos.
func (s *PhotoService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Photos.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/photo: counting photos: %w", err)
	}
	return n, nil
}

// GetByID returns the photo with id.
// Returns apperror.ErrNotFound if the photo doesn't exist.
func (s *PhotoService) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "photo ID is required")
	}
	return s.store.Photos.GetByID(ctx, id)
}
