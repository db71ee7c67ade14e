package model

// Tag records that a user appears in a photo.
//
// It is a plain association: the same (PhotoID, UserID) pair may be stored
// more than once, and readers must not assume pairs are distinct.
type Tag struct {
	PhotoID string `json:"photoID"`
	UserID  string `json:"userID"`
}
