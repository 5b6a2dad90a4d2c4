package ports

import (
	"context"
	"time"
)

// SessionStore is the key-value cache behind the token lifecycle.
//
// It tracks exactly one refresh token per user (overwriting is how
// rotation and revocation happen) and, when email confirmation is
// enabled, maps pending confirmation tokens to user IDs. Every entry
// expires on its own TTL; there are no cross-key guarantees.
type SessionStore interface {
	// SaveRefreshToken stores token as the single valid refresh token for
	// the user, replacing whatever was there before.
	SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error

	// RefreshToken returns the stored refresh token for the user, or
	// domain.ErrNoSession when nothing is stored.
	RefreshToken(ctx context.Context, userID string) (string, error)

	// DeleteRefreshToken revokes the user's session. Deleting an absent
	// key is not an error.
	DeleteRefreshToken(ctx context.Context, userID string) error

	// SaveConfirmation maps a confirmation token to a user ID for the
	// confirmation window.
	SaveConfirmation(ctx context.Context, token, userID string, ttl time.Duration) error

	// ConfirmationUserID resolves a confirmation token to the user ID it
	// was issued for, or domain.ErrConfirmationInvalid when absent.
	ConfirmationUserID(ctx context.Context, token string) (string, error)

	// DeleteConfirmation removes a confirmation token (single use).
	DeleteConfirmation(ctx context.Context, token string) error
}
