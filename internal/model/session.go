package model

import "time"

// DefaultSessionTTL is how long a session stays valid after it is started.
// There is no sliding renewal.
const DefaultSessionTTL = 24 * time.Hour

// Session binds a hashed session token to a user until ExpiresAt.
//
// Only the sha256 of the token is persisted; the plain token lives in the
// client's cookie and is never stored server-side.
type Session struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
