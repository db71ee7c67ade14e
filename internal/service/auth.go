package service

// AuthService is the business logic layer for identities. It sits between
// the transports (GraphQL resolvers, the OAuth callback handler, the
// current-user middleware) and the identity provider / user store:
//
//	resolver / handler → AuthService → IdentityProvider (GitHub)
//	                                 ↘ UserRepository (DB)
//
// KEY RESPONSIBILITIES:
//   - Turn an OAuth code into a stored user plus a bearer token
//   - Map a bearer token back to a user on every request
//   - Create throwaway users for demos and tests (addFakeUsers, fakeUserAuth)

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/metrics"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository"
)

// Limits for addFakeUsers.
const (
	MinFakeUsers = 1
	MaxFakeUsers = 100
)

// IdentityProvider exchanges a one-time OAuth code for a verified identity.
// auth.GitHubProvider is the production implementation.
type IdentityProvider interface {
	Authorize(ctx context.Context, code string) (*model.GitHubIdentity, error)
}

// IdentitySource generates identities that never went through OAuth.
// seed.RandomUsers is the production implementation.
type IdentitySource interface {
	Fetch(ctx context.Context, count int) ([]model.GitHubIdentity, error)
}

// AuthService handles identity business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user records
//   - provider  IdentityProvider          → GitHub code exchange
//   - fakes     IdentitySource            → random identities for addFakeUsers
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users    repository.UserRepository
	provider IdentityProvider
	fakes    IdentitySource
	logger   *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	provider IdentityProvider,
	fakes IdentitySource,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		provider: provider,
		fakes:    fakes,
		logger:   logger,
	}
}

// UpsertUser stores identity as a user and returns the user with its token.
//
// WHY UPSERT (not insert + check conflict)?
// GitHub logins are stable, so the login is the key. First login inserts;
// every later login REPLACES the whole record, which refreshes the token and
// drops profile fields the user removed on GitHub (e.g. a deleted avatar).
func (s *AuthService) UpsertUser(ctx context.Context, identity *model.GitHubIdentity) (*model.AuthPayload, error) {
	if identity == nil || identity.Login == "" {
		return nil, fmt.Errorf("service/auth: identity must have a login")
	}

	user := &model.User{
		GitHubLogin: identity.Login,
		Name:        identity.Name,
		Avatar:      identity.AvatarURL,
		GitHubToken: identity.AccessToken,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", identity.Login, err)
	}

	return &model.AuthPayload{Token: user.GitHubToken, User: user}, nil
}

// GitHubAuth runs the whole login: code exchange, then upsert.
//
// Provider errors (apperror.ErrAuthExchange, ErrTransport, ErrProtocol) are
// returned unchanged so the transport can report their code.
func (s *AuthService) GitHubAuth(ctx context.Context, code string) (*model.AuthPayload, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}

	identity, err := s.provider.Authorize(ctx, code)
	if err != nil {
		metrics.AuthExchangesTotal.WithLabelValues(errorCode(err)).Inc()
		s.logger.Warn("github code exchange failed", slog.String("error", err.Error()))
		return nil, err
	}
	metrics.AuthExchangesTotal.WithLabelValues("ok").Inc()

	payload, err := s.UpsertUser(ctx, identity)
	if err != nil {
		s.logger.Error("failed to store github user",
			slog.String("login", identity.Login),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user authenticated via GitHub", slog.String("login", payload.User.GitHubLogin))
	return payload, nil
}

// ResolveCurrentUser finds the user whose stored token equals token.
//
// No token, or a token nobody owns, is an anonymous request: (nil, nil).
// Only store failures are errors.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	user, err := s.users.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/auth: resolving current user: %w", err)
	}
	return user, nil
}

// AddFakeUsers creates count random users and returns them in the order
// they were generated.
func (s *AuthService) AddFakeUsers(ctx context.Context, count int) ([]model.User, error) {
	if count < MinFakeUsers || count > MaxFakeUsers {
		return nil, apperror.ValidationFailed("count",
			fmt.Sprintf("count must be between %d and %d", MinFakeUsers, MaxFakeUsers))
	}

	identities, err := s.fakes.Fetch(ctx, count)
	if err != nil {
		s.logger.Warn("fetching random users failed", slog.String("error", err.Error()))
		return nil, err
	}

	users := make([]model.User, 0, len(identities))
	for i := range identities {
		payload, err := s.UpsertUser(ctx, &identities[i])
		if err != nil {
			return nil, err
		}
		users = append(users, *payload.User)
	}

	metrics.FakeUsersCreatedTotal.Add(float64(len(users)))
	s.logger.Info("fake users added", slog.Int("count", len(users)))
	return users, nil
}

// FakeUserAuth returns the stored token of githubLogin without going through
// GitHub. It is meant for users created by AddFakeUsers or the sample data.
//
// Users that never logged in (the sample users) have no token. One is minted
// and stored on their first fakeUserAuth; later calls return the same token.
func (s *AuthService) FakeUserAuth(ctx context.Context, githubLogin string) (*model.AuthPayload, error) {
	user, err := s.users.FindByLogin(ctx, githubLogin)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("user", githubLogin)
		}
		return nil, fmt.Errorf("service/auth: finding user %s: %w", githubLogin, err)
	}

	if user.GitHubToken == "" {
		user.GitHubToken = "fake-" + xid.New().String()
		if err := s.users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: storing token for %s: %w", githubLogin, err)
		}
	}

	s.logger.Info("fake user authenticated", slog.String("login", user.GitHubLogin))
	return &model.AuthPayload{Token: user.GitHubToken, User: user}, nil
}

// AllUsers returns every user in store order.
func (s *AuthService) AllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users.
func (s *AuthService) CountUsers(ctx context.Context) (int, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/auth: counting users: %w", err)
	}
	return n, nil
}

// UserByLogin returns the user with githubLogin, or nil if there is none.
func (s *AuthService) UserByLogin(ctx context.Context, githubLogin string) (*model.User, error) {
	user, err := s.users.FindByLogin(ctx, githubLogin)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/auth: finding user %s: %w", githubLogin, err)
	}
	return user, nil
}

// errorCode is the apperror code of err, or "INTERNAL".
func errorCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "INTERNAL"
}
