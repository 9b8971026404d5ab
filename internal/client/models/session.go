// Package models holds the wire shapes the client exchanges with the
// server.
package models

// Profile is the user shape embedded in auth responses.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SessionResponse is the body of login and refresh responses.
type SessionResponse struct {
	AccessToken string   `json:"accessToken"`
	User        *Profile `json:"user"`
}
