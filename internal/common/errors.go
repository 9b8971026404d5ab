package common

import "errors"

// Sentinel errors shared between the service layer and the HTTP gateway.
// Callers should match them with errors.Is; the gateway maps each one to a
// stable status/code pair.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Login failures. Deliberately a single error for both "no such user"
	// and "wrong password".
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAuthProviderMismatch is returned when the account has no local
	// password because it was created through an external provider.
	ErrAuthProviderMismatch = errors.New("login with registered auth provider")

	// Refresh credential errors: missing, malformed, expired, or revoked.
	ErrAuthentication = errors.New("authentication error")

	// ErrInactiveAccount is returned at refresh time for deactivated users.
	ErrInactiveAccount = errors.New("account is inactive")

	// ErrAuthorization is returned when a privileged role is requested by
	// an identity that is not allow-listed.
	ErrAuthorization = errors.New("not authorized")

	// Access token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")

	// ErrBadRequest covers malformed identifiers in request paths.
	ErrBadRequest = errors.New("bad request")
)
