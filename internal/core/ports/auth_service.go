package ports

import (
	"context"

	"github.com/authhub/identity-service/internal/core/domain"
)

// RegisterInput is the data collected at sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	Phone     string
	FirstName string
	LastName  string
}

// Credentials is an email/password pair presented at login.
type Credentials struct {
	Email    string
	Password string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService orchestrates the authentication lifecycle: registration,
// optional email confirmation, login, token rotation and logout, plus the
// plain user persistence operations exposed by the API.
type AuthService interface {
	// Register creates an inactive user (active when confirmation is
	// disabled) and returns a human-readable status message.
	Register(ctx context.Context, input RegisterInput) (string, error)

	// ConfirmEmail activates the user a confirmation token was issued for
	// and consumes the token. Returns the URL to redirect the browser to.
	ConfirmEmail(ctx context.Context, token string) (string, error)

	// Authenticate verifies credentials and opens a session: a fresh
	// access/refresh pair, with the refresh token stored server-side.
	Authenticate(ctx context.Context, creds Credentials) (TokenPair, error)

	// RefreshTokens exchanges a possibly-expired access token for a new
	// pair, rotating the stored refresh token.
	RefreshTokens(ctx context.Context, accessToken string) (TokenPair, error)

	// Logout revokes the user's stored refresh token. Idempotent.
	Logout(ctx context.Context, userID string) error

	UpdateUser(ctx context.Context, userID string, update UserUpdate) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
}
