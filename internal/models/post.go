package models

// Post is a short text owned by exactly one user.
type Post struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	OwnerID int    `json:"owner_id"`
}
