// Package graph is the GraphQL surface of the API.
//
// The schema lives in schema.graphql and is embedded into the binary.
// graph-gophers/graphql-go binds it to Go by reflection: every object type
// has a resolver struct, and every field is a method with the same name
// (case-insensitive). Parsing fails at startup if a field has no method,
// so a schema/resolver mismatch never reaches a request.
//
// Type mapping used throughout the package:
//
//	ID!      → graphql.ID      String  → *string (nil is null)
//	Int!     → int32           enum    → string
//	[T!]!    → []*tResolver    T       → *tResolver (nil is null)
package graph

import (
	_ "embed"
	"log/slog"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/sakif/photoshare-api/internal/service"
)

//go:embed schema.graphql
var schemaSDL string

// maxDepth bounds query nesting. User.postedPhotos.taggedUsers.inPhotos...
// is legal but every level rescans the collections.
const maxDepth = 10

// Resolver is the root resolver: it answers both Query and Mutation fields.
type Resolver struct {
	users  *service.AuthService
	photos *service.PhotoService
	logger *slog.Logger
}

// NewResolver creates the root resolver.
func NewResolver(users *service.AuthService, photos *service.PhotoService, logger *slog.Logger) *Resolver {
	return &Resolver{users: users, photos: photos, logger: logger}
}

// NewSchema parses the embedded schema against r. It panics if the schema
// and the resolvers disagree, which is a programming error.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxDepth),
	)
}
