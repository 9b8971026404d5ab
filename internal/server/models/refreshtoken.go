package models

import "time"

// RefreshToken is the durable record of an issued refresh token. The row's
// presence is what keeps the token valid: logout deletes it, and there is
// no store-level expiry.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
}
