package model

import (
	"slices"
	"time"
)

// Category is the kind of photo. Values match the PhotoCategory GraphQL enum.
type Category string

const (
	CategorySelfie    Category = "SELFIE"
	CategoryPortrait  Category = "PORTRAIT"
	CategoryAction    Category = "ACTION"
	CategoryLandscape Category = "LANDSCAPE"
	CategoryGraphic   Category = "GRAPHIC"

	// DefaultCategory is used when postPhoto omits a category.
	DefaultCategory = CategoryPortrait
)

// Categories lists every valid Category in schema order.
var Categories = []Category{
	CategorySelfie,
	CategoryPortrait,
	CategoryAction,
	CategoryLandscape,
	CategoryGraphic,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Photo is a posted photo.
//
// ID is always a string, whatever the backend uses natively (an ordinal
// counter in memory, an xid in SQLite, an ObjectID in MongoDB). Each
// repository converts its native identifier at the storage boundary, so the
// rest of the code can compare IDs with ==.
//
// UserID holds the poster's GitHubLogin. It is stamped from the caller's
// resolved identity when the photo is created, never taken from input.
type Photo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	UserID      string    `json:"userID"`
	Created     time.Time `json:"created"`
}

// PhotoInput is the client-supplied part of a new photo. Everything else
// (ID, UserID, Created) is assigned by the server.
type PhotoInput struct {
	Name        string
	Description string
	Category    Category
}
