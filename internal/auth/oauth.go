package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
)

// DefaultAPIURL is the GitHub REST API root. The profile lives at /user.
const DefaultAPIURL = "https://api.github.com"

// GitHubConfig holds the OAuth app credentials and endpoints.
//
// You get ClientID and ClientSecret by registering an OAuth App at:
// https://github.com/settings/developers → "OAuth Apps" → "New OAuth App"
//
// TokenURL and APIURL default to GitHub's own endpoints; tests point them at
// an httptest server.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	TokenURL     string
	APIURL       string
	Timeout      time.Duration
}

// GitHubProvider turns a one-time OAuth code into a verified GitHub identity.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. The client (a browser via /auth/github/login, or any GraphQL client)
//     sends the user to GitHub's authorize page.
//  2. GitHub redirects back with a short-lived "code".
//  3. Authorize trades the code for an access token (server-to-server call,
//     using our ClientSecret).
//  4. Authorize uses the access token to read the user's profile.
//
// The provider holds no per-request state, so one instance serves every
// request concurrently.
type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
	client *http.Client
}

// NewGitHubProvider creates a GitHubProvider from cfg.
//
// Scopes we request:
//   - "read:user": access to the user's public profile (login, name, avatar)
func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	endpoint := github.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"read:user"},
			Endpoint:     endpoint,
		},
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

// AuthURL returns the GitHub authorize URL for the browser redirect flow.
// state must come back unchanged on the callback; see StateSigner.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// tokenResponse covers both GitHub's success and failure bodies. GitHub
// answers a bad code with 200 and an "error" field, so the status code alone
// says nothing.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (t tokenResponse) errorMessage() string {
	switch {
	case t.Message != "":
		return t.Message
	case t.ErrorDescription != "":
		return t.ErrorDescription
	default:
		return t.Error
	}
}

// Authorize completes the OAuth flow for code.
//
// Errors:
//   - apperror.ErrAuthExchange: GitHub rejected the code or the token
//   - apperror.ErrTransport:    GitHub could not be reached
//   - apperror.ErrProtocol:     GitHub answered with something unreadable
//
// The exchange is single shot. A rejected code is never retried and the
// profile is never requested without a token.
func (p *GitHubProvider) Authorize(ctx context.Context, code string) (*model.GitHubIdentity, error) {
	token, err := p.exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return p.profile(ctx, token)
}

// exchange POSTs {client_id, client_secret, code} to the token endpoint.
//
// WHY NOT oauth2.Config.Exchange?
// x/oauth2 form-encodes the request and folds GitHub's error body into a
// generic *oauth2.RetrieveError. We need the message GitHub sent, verbatim,
// to hand back to the caller.
func (p *GitHubProvider) exchange(ctx context.Context, code string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     p.config.ClientID,
		"client_secret": p.config.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return "", fmt.Errorf("auth: encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("auth: building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperror.Transport("github token request", err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := decodeJSON(resp.Body, &body); err != nil {
		return "", apperror.Protocol("github token response", err)
	}

	if msg := body.errorMessage(); msg != "" {
		return "", apperror.AuthExchange(msg)
	}
	if body.AccessToken == "" {
		return "", apperror.Protocol("github token response",
			fmt.Errorf("status %d with neither access_token nor message", resp.StatusCode))
	}

	return body.AccessToken, nil
}

// profile reads GET /user with the access token as a bearer credential.
//
// oauth2.Transport adds "Authorization: Bearer <token>" to every request it
// sends, and StaticTokenSource never tries to refresh.
func (p *GitHubProvider) profile(ctx context.Context, accessToken string) (*model.GitHubIdentity, error) {
	client := &http.Client{
		Timeout: p.client.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}),
			Base:   p.client.Transport,
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building profile request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.Transport("github profile request", err)
	}
	defer resp.Body.Close()

	var profile map[string]any
	if err := decodeJSON(resp.Body, &profile); err != nil {
		return nil, apperror.Protocol("github profile response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, _ := profile["message"].(string); msg != "" {
			return nil, apperror.AuthExchange(msg)
		}
		return nil, apperror.Protocol("github profile response", fmt.Errorf("status %d", resp.StatusCode))
	}

	login, _ := profile["login"].(string)
	if login == "" {
		return nil, apperror.Protocol("github profile response", errors.New("missing login"))
	}
	name, _ := profile["name"].(string)
	avatar, _ := profile["avatar_url"].(string)

	return &model.GitHubIdentity{
		Login:       login,
		Name:        name,
		AvatarURL:   avatar,
		AccessToken: accessToken,
		Profile:     profile,
	}, nil
}

// decodeJSON decodes one JSON value from r. An empty body is an error.
func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}
