package domain

import "time"

// Session is the public projection of an authenticated user, created on
// login or registration and held until logout. It never carries the
// password hash.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	UserCreatedAt time.Time `json:"user_created_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSession projects a user into a session with the given id.
func NewSession(id string, user *User, now time.Time) *Session {
	return &Session{
		ID:            id,
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		UserCreatedAt: user.CreatedAt,
		CreatedAt:     now,
	}
}
