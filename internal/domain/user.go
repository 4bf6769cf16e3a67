package domain

import "time"

// User represents a registered account. Email is stored normalized
// (lowercased, trimmed) and is unique across all users.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch enumerates the fields a profile update may change.
// Nil fields are left untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}
