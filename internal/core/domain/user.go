package domain

import "time"

// User is a marketplace account. PasswordHash is the bcrypt digest of the
// local credential; accounts created through an OAuth provider still carry
// one (a random throwaway) so the column is never null.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	IsSeller     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
