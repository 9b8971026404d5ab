// Package refreshtokens declares the server-side repository contract for
// the durable refresh-token store. A token is valid only while its row
// exists; there is no store-level expiry sweep.
package refreshtokens

import "context"

// Repository defines operations for issuing, checking, and revoking
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID.
	Create(ctx context.Context, userID string, token string) error

	// Exists reports whether the token has a durable row.
	Exists(ctx context.Context, token string) (bool, error)

	// Delete removes a refresh token by its token string. Deleting a
	// non-existent token is not an error.
	Delete(ctx context.Context, token string) error
}
