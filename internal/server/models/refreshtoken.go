package models

import "time"

// RefreshToken is an opaque, single-use token that buys a new token pair.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is no longer valid at t. The expiry
// instant itself is already expired.
func (t *RefreshToken) ExpiredAt(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}
