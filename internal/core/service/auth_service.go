package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authhub/identity-service/internal/core/domain"
	"github.com/authhub/identity-service/internal/core/ports"
	"github.com/authhub/identity-service/internal/core/token"
)

// Config carries the token lifetimes and confirmation-flow settings the
// AuthService needs. All values come from the environment; nothing here is
// hard-coded in the logic.
type Config struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ConfirmTokenTTL time.Duration

	// ConfirmationEnabled gates the email-confirmation flow. When false,
	// users are created active and login never checks activation.
	ConfirmationEnabled bool

	// PublicURL is the externally reachable base URL used in confirmation
	// links, e.g. "https://id.example.com".
	PublicURL string

	// ConfirmRedirectURL is where the browser lands after confirming.
	ConfirmRedirectURL string
}

// AuthService implements ports.AuthService. It owns no state of its own;
// everything lives in the injected user repository and session store.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	codec    *token.Codec
	hasher   PasswordHasher
	mail     ports.MailDispatcher
	cfg      Config
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	codec *token.Codec,
	mail ports.MailDispatcher,
	cfg Config,
	log zerolog.Logger,
) *AuthService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 30 * time.Minute
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 14 * 24 * time.Hour
	}
	if cfg.ConfirmTokenTTL <= 0 {
		cfg.ConfirmTokenTTL = time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
		hasher:   BcryptHasher{},
		mail:     mail,
		cfg:      cfg,
		log:      log,
	}
}

// Register creates the user and, when confirmation is enabled, issues a
// single-use confirmation token and queues the confirmation email. The
// email is best-effort: a dead mail transport never rolls back the user.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (string, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("register: lookup email: %w", err)
	}
	if existing != nil {
		return "", domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     !s.cfg.ConfirmationEnabled,
		IsUser:       true,
	})
	if err != nil {
		return "", err
	}

	if s.cfg.ConfirmationEnabled {
		confirmToken := uuid.NewString()
		if err := s.sessions.SaveConfirmation(ctx, confirmToken, user.ID, s.cfg.ConfirmTokenTTL); err != nil {
			return "", fmt.Errorf("register: store confirmation token: %w", err)
		}
		s.mail.Enqueue(confirmationEmail(user, s.cfg.PublicURL, confirmToken))
		return fmt.Sprintf("%s %s, a confirmation link has been sent to your email", user.FirstName, user.LastName), nil
	}

	return fmt.Sprintf("%s %s, your account has been created", user.FirstName, user.LastName), nil
}

// ConfirmEmail activates the account a confirmation token was issued for
// and consumes the token so it cannot be replayed.
func (s *AuthService) ConfirmEmail(ctx context.Context, confirmToken string) (string, error) {
	userID, err := s.sessions.ConfirmationUserID(ctx, confirmToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	active := true
	if _, err := s.users.Update(ctx, user.ID, ports.UserUpdate{IsActive: &active}); err != nil {
		return "", fmt.Errorf("confirm: activate user: %w", err)
	}

	if err := s.sessions.DeleteConfirmation(ctx, confirmToken); err != nil {
		// The account is active either way; the leftover key just ages out.
		s.log.Warn().Err(err).Msg("failed to delete used confirmation token")
	}

	return s.cfg.ConfirmRedirectURL, nil
}

// Authenticate checks credentials and opens a session. Storing the new
// refresh token overwrites any previous one, so at most one refresh token
// per user is ever accepted.
func (s *AuthService) Authenticate(ctx context.Context, creds ports.Credentials) (ports.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.TokenPair{}, domain.ErrInvalidCredentials
		}
		return ports.TokenPair{}, fmt.Errorf("authenticate: lookup email: %w", err)
	}
	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return ports.TokenPair{}, domain.ErrInvalidCredentials
	}
	if s.cfg.ConfirmationEnabled && !user.IsActive {
		return ports.TokenPair{}, domain.ErrNotActivated
	}

	return s.issuePair(ctx, user.ID)
}

// RefreshTokens rotates the session. The presented access token only has
// to carry a valid signature; its expiry is ignored so a client whose
// access token just lapsed can still refresh. The stored refresh token is
// the one whose expiry decides whether the session is still alive.
func (s *AuthService) RefreshTokens(ctx context.Context, accessToken string) (ports.TokenPair, error) {
	claims, err := s.codec.Verify(accessToken, false)
	if err != nil {
		return ports.TokenPair{}, err
	}
	userID := token.Subject(claims)
	if userID == "" {
		return ports.TokenPair{}, domain.ErrTokenInvalid
	}

	stored, err := s.sessions.RefreshToken(ctx, userID)
	if err != nil {
		return ports.TokenPair{}, err
	}
	if _, err := s.codec.Verify(stored, true); err != nil {
		return ports.TokenPair{}, err
	}

	return s.issuePair(ctx, userID)
}

// Logout revokes the stored refresh token. Deleting an absent key is fine,
// so calling Logout twice is harmless.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.sessions.DeleteRefreshToken(ctx, userID)
}

func (s *AuthService) UpdateUser(ctx context.Context, userID string, update ports.UserUpdate) (*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, userID, update)
}

func (s *AuthService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.GetAll(ctx)
}

// issuePair mints a fresh access/refresh pair and stores the refresh token
// under the user's key. The overwrite is last-write-wins: concurrent
// logins or refreshes race, and the loser's next refresh fails closed.
func (s *AuthService) issuePair(ctx context.Context, userID string) (ports.TokenPair, error) {
	claims := jwt.MapClaims{"sub": userID}

	access, err := s.codec.Issue(claims, s.cfg.AccessTokenTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.codec.Issue(claims, s.cfg.RefreshTokenTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}

	if err := s.sessions.SaveRefreshToken(ctx, userID, refresh, s.cfg.RefreshTokenTTL); err != nil {
		return ports.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func confirmationEmail(user *domain.User, publicURL, confirmToken string) ports.Email {
	link := fmt.Sprintf("%s/auth/confirm?token=%s", publicURL, confirmToken)
	body := fmt.Sprintf(`<h3>Hello, %s!</h3>
<p>Follow the link below to confirm your registration:</p>
<a href="%s">Confirm email</a>`, user.FirstName, link)

	return ports.Email{
		To:      user.Email,
		Subject: "Confirm your registration",
		HTML:    body,
	}
}
