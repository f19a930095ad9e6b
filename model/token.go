package model

import "time"

// Token is a persisted session credential. UserID is resolved through
// users.login when the token is looked up and is not stored on the row.
type Token struct {
	ID        int
	Login     string
	UserID    int
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is no longer valid at now.
func (t *Token) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
