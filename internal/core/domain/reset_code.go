package domain

import "time"

// PasswordResetCode is a single-use 6-digit recovery code. At most one
// unused row exists per user: issuing a new code invalidates all prior
// unused ones first.
type PasswordResetCode struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Expired reports whether the code is past its lifetime at the given instant.
func (c PasswordResetCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
