package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record. Password hash and refresh token never leave the service in JSON.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	PasswordHash string    `json:"-"`
	RefreshToken *string   `json:"-"` // nil when never issued or invalidated by logout
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy with security fields stripped
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.RefreshToken = nil
	return &cp
}

// AccountUpdate holds the profile fields a user may change about themselves
type AccountUpdate struct {
	FullName string
	Email    string
	Username string // empty keeps the current username
}
