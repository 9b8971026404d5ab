// Package models defines server-side data models persisted in the database.
package models

import "time"

// Roles a user can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Auth providers. Only local users carry a password hash.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // empty for externally-authenticated accounts
	Role         string
	AuthProvider string
	IsActive     bool
	// NotificationCount is the cached unread tally. It is eventually
	// consistent with the notifications table.
	NotificationCount int
	CreatedAt         time.Time
}

// Profile is the client-facing subset of User returned from the auth
// endpoints.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Profile returns the user's client-facing shape.
func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
