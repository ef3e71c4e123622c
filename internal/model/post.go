package model

import "time"

// Post is a short text message owned by the user in UserID.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthoredPost is a Post joined with its author's display name.
//
// The embedded Post is flattened by encoding/json, so the wire format is
//
//	{"id":"...","user_id":"...","content":"...","created_at":"...","name":"...","surname":"..."}
//
// which lets the feed render without a second lookup per author.
type AuthoredPost struct {
	Post
	Name    string `json:"name"`
	Surname string `json:"surname"`
}
