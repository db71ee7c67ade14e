package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
)

// AuthURLBuilder builds the GitHub authorize URL for a given state.
// *auth.GitHubProvider satisfies it.
type AuthURLBuilder interface {
	AuthURL(state string) string
}

// StateSigner issues and verifies the OAuth state. *auth.StateSigner
// satisfies it.
type StateSigner interface {
	Issue() (string, error)
	Verify(state string) error
}

// CodeAuthenticator turns an OAuth code into a logged-in user.
// *service.AuthService satisfies it.
type CodeAuthenticator interface {
	GitHubAuth(ctx context.Context, code string) (*model.AuthPayload, error)
}

// AuthHandler manages the browser side of the GitHub OAuth login flow.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → receive the code, log the user in, return the token
//
// The callback does exactly what the githubAuth mutation does, so a browser
// can log in without a GraphQL client. Both paths end in
// AuthService.GitHubAuth.
type AuthHandler struct {
	github AuthURLBuilder
	state  StateSigner
	users  CodeAuthenticator
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	github AuthURLBuilder,
	state StateSigner,
	users CodeAuthenticator,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github: github,
		state:  state,
		users:  users,
		logger: logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// The state is a short-lived signed token (see auth.StateSigner). GitHub
// hands it back untouched on the callback, where HandleGitHubCallback checks
// the signature. No cookie or server-side storage is needed.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state, err := h.state.Issue()
	if err != nil {
		h.logger.Error("auth login: issuing state failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Surface a denial from GitHub (?error=access_denied)
//  3. Exchange the code and upsert the user (AuthService.GitHubAuth)
//  4. Respond with {"token": ..., "user": {...}}
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// --- Step 1: Validate CSRF state ---
	if err := h.state.Verify(q.Get("state")); err != nil {
		h.logger.Warn("auth callback: rejected state", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	// --- Step 2: GitHub-side denial ---
	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		msg := q.Get("error_description")
		if msg == "" {
			msg = errParam
		}
		writeError(w, apperror.AuthExchange(msg))
		return
	}

	// --- Step 3: Exchange the code ---
	// An empty code is rejected by GitHubAuth as a validation error.
	payload, err := h.users.GitHubAuth(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Warn("auth callback: login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	// --- Step 4: Hand the token to the client ---
	writeJSON(w, http.StatusOK, payload)
}
