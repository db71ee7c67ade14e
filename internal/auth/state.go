// Package auth provides GitHub OAuth, the signed state used by the browser
// login flow, and the middleware that resolves the current user.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Browser visits /auth/github/login → redirected to GitHub with a signed state
//  2. GitHub calls back /auth/github/callback with a code and the same state
//  3. Server verifies the state, exchanges the code (GitHubProvider.Authorize)
//     and upserts the user; the GitHub access token is returned to the client
//  4. On subsequent requests the client sends "Authorization: <token>",
//     and CurrentUser middleware matches it against the stored tokens
//
// GraphQL clients can skip steps 1-2 and call the githubAuth mutation with a
// code they obtained themselves.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	stateIssuer = "photoshare-api"
	stateTTL    = 10 * time.Minute
)

// StateSigner issues and verifies the OAuth "state" parameter.
//
// WHY A JWT AS STATE?
// The state has to survive a round trip through GitHub and come back
// unmodified, which proves the callback belongs to a login this server
// started (CSRF protection). A short-lived HMAC-signed JWT does that without
// storing anything server-side: the signature proves we issued it, "exp"
// bounds how long it is usable, and the random "jti" makes every state
// unique.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"iss":"photoshare-api","jti":"<xid>","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewStateSigner creates a StateSigner with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: STATE_SECRET=$(openssl rand -hex 32)
func NewStateSigner(secret string) (*StateSigner, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: state secret must be at least 16 characters")
	}
	return &StateSigner{secret: []byte(secret), ttl: stateTTL}, nil
}

// Issue creates a new signed state.
func (s *StateSigner) Issue() (string, error) {
	return s.issue(s.ttl)
}

func (s *StateSigner) issue(ttl time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		ID:        xid.New().String(),
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing state: %w", err)
	}
	return signed, nil
}

// Verify checks that state was issued by this signer and has not expired.
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed with
// "none" and the library might accept it. jwt.WithValidMethods prevents this.
func (s *StateSigner) Verify(state string) error {
	if state == "" {
		return errors.New("auth: missing state")
	}

	token, err := jwt.ParseWithClaims(
		state,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.New("auth: state expired")
		}
		return fmt.Errorf("auth: invalid state: %w", err)
	}

	c, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || c.ID == "" {
		return errors.New("auth: invalid state claims")
	}
	return nil
}
