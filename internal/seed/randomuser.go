package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
)

// DefaultRandomUserURL is the public randomuser.me endpoint.
const DefaultRandomUserURL = "https://randomuser.me/api/"

// RandomUsers generates throwaway identities from the randomuser.me API.
//
// The returned identities look like GitHub logins to the rest of the app:
// the username becomes the login and the account's sha1 becomes the token,
// so a fake user can call the API exactly like a real one.
type RandomUsers struct {
	baseURL string
	client  *http.Client
}

// NewRandomUsers creates a client for baseURL. An empty baseURL means
// DefaultRandomUserURL.
func NewRandomUsers(baseURL string, client *http.Client) *RandomUsers {
	if baseURL == "" {
		baseURL = DefaultRandomUserURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RandomUsers{baseURL: baseURL, client: client}
}

type randomUserResponse struct {
	Results []struct {
		Login struct {
			Username string `json:"username"`
			SHA1     string `json:"sha1"`
		} `json:"login"`
		Name struct {
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"name"`
		Picture struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"picture"`
	} `json:"results"`
	Error string `json:"error"`
}

// Fetch requests count identities.
func (r *RandomUsers) Fetch(ctx context.Context, count int) ([]model.GitHubIdentity, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("seed: parsing randomuser url: %w", err)
	}
	q := u.Query()
	q.Set("results", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("seed: building randomuser request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperror.Transport("randomuser request", err)
	}
	defer resp.Body.Close()

	var body randomUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.Protocol("randomuser response", err)
	}
	if body.Error != "" {
		return nil, apperror.Protocol("randomuser response", fmt.Errorf("%s", body.Error))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Protocol("randomuser response", fmt.Errorf("status %d", resp.StatusCode))
	}

	identities := make([]model.GitHubIdentity, 0, len(body.Results))
	for _, res := range body.Results {
		if res.Login.Username == "" {
			return nil, apperror.Protocol("randomuser response", fmt.Errorf("result without login.username"))
		}
		identities = append(identities, model.GitHubIdentity{
			Login:       res.Login.Username,
			Name:        strings.TrimSpace(res.Name.First + " " + res.Name.Last),
			AvatarURL:   res.Picture.Thumbnail,
			AccessToken: res.Login.SHA1,
		})
	}
	return identities, nil
}
