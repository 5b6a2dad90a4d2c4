package domain

import "errors"

// Sentinel errors raised by the core services. The API layer maps each one
// to a deterministic HTTP status; everything else is treated as internal.
var (
	// ErrUserExists is returned on registration with an already-taken email.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when a lookup matches no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers both unknown email and password mismatch,
	// so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotActivated is returned on login before the email is confirmed.
	ErrNotActivated = errors.New("email not confirmed")

	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry. Kept distinct from ErrTokenInvalid for diagnostics; both
	// surface as 401 to clients.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid means a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrNoSession is returned when no refresh token is stored for the user,
	// i.e. the session was never opened, already rotated away, or revoked.
	ErrNoSession = errors.New("no active session")

	// ErrConfirmationInvalid covers an unknown or expired confirmation token.
	ErrConfirmationInvalid = errors.New("invalid or expired confirmation token")

	// ErrUnauthenticated is returned when a protected route is hit without a
	// resolvable access token.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller lacks the required privilege.
	ErrForbidden = errors.New("access forbidden")
)
