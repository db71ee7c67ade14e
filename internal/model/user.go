// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a person known to the API, identified by their GitHub login.
//
// GitHubLogin is the identity key: it is unique across the users collection
// and it is the ONLY field other records join on (Photo.UserID, Tag.UserID).
// Storage-internal identifiers (sqlite rowid, mongo _id) never leave the
// repository layer.
//
// WHY GitHubToken IS ON THE RECORD:
// The token issued by GitHub during login doubles as the API's bearer token.
// Each request's Authorization header is matched against this field to find
// the current user. It never appears in GraphQL output (there is no field for
// it in the schema) and it is tagged json:"-" so it never leaks through the
// REST callback response either.
//
// Name and Avatar use the empty string as "not set", the same convention the
// rest of the models use for optional text.
type User struct {
	GitHubLogin string    `json:"githubLogin"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	GitHubToken string    `json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// GitHubIdentity is a verified external identity, the result of exchanging
// an OAuth code with GitHub.
//
// Profile holds the full decoded /user payload, so fields the API does not
// model yet (bio, company, ...) are still available to callers.
type GitHubIdentity struct {
	Login       string
	Name        string
	AvatarURL   string
	AccessToken string
	Profile     map[string]any
}

// AuthPayload is what a successful login returns to the client: the bearer
// token to send on later requests, and the stored user record.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
