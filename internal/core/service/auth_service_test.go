package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/authhub/identity-service/internal/core/domain"
	"github.com/authhub/identity-service/internal/core/ports"
	"github.com/authhub/identity-service/internal/core/token"
)

type stubUserRepo struct {
	users map[string]*domain.User // keyed by ID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) GetAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	return cloneUser(u), nil
}

type stubSessionStore struct {
	refresh       map[string]string
	confirmations map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		refresh:       make(map[string]string),
		confirmations: make(map[string]string),
	}
}

func (s *stubSessionStore) SaveRefreshToken(_ context.Context, userID, token string, _ time.Duration) error {
	s.refresh[userID] = token
	return nil
}

func (s *stubSessionStore) RefreshToken(_ context.Context, userID string) (string, error) {
	t, ok := s.refresh[userID]
	if !ok {
		return "", domain.ErrNoSession
	}
	return t, nil
}

func (s *stubSessionStore) DeleteRefreshToken(_ context.Context, userID string) error {
	delete(s.refresh, userID)
	return nil
}

func (s *stubSessionStore) SaveConfirmation(_ context.Context, token, userID string, _ time.Duration) error {
	s.confirmations[token] = userID
	return nil
}

func (s *stubSessionStore) ConfirmationUserID(_ context.Context, token string) (string, error) {
	id, ok := s.confirmations[token]
	if !ok {
		return "", domain.ErrConfirmationInvalid
	}
	return id, nil
}

func (s *stubSessionStore) DeleteConfirmation(_ context.Context, token string) error {
	delete(s.confirmations, token)
	return nil
}

type stubMailer struct {
	sent []ports.Email
}

func (m *stubMailer) Enqueue(msg ports.Email) {
	m.sent = append(m.sent, msg)
}

type authFixture struct {
	svc      *AuthService
	users    *stubUserRepo
	sessions *stubSessionStore
	mailer   *stubMailer
	codec    *token.Codec
}

func newAuthFixture(t *testing.T, cfg Config) *authFixture {
	t.Helper()

	codec, err := token.NewCodec("test-secret", "HS256")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	users := newStubUserRepo()
	sessions := newStubSessionStore()
	mailer := &stubMailer{}

	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:8080"
	}
	if cfg.ConfirmRedirectURL == "" {
		cfg.ConfirmRedirectURL = "http://localhost:8080/"
	}

	svc := NewAuthService(users, sessions, codec, mailer, cfg, zerolog.Nop())
	return &authFixture{svc: svc, users: users, sessions: sessions, mailer: mailer, codec: codec}
}

var registration = ports.RegisterInput{
	Email:     "a@b.com",
	Password:  "pw123456",
	Phone:     "+71234567",
	FirstName: "A",
	LastName:  "B",
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})

	msg, err := f.svc.Register(context.Background(), registration)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}

	user, err := f.users.FindByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.PasswordHash == "pw123456" {
		t.Fatalf("password stored as plaintext")
	}
	if user.IsActive {
		t.Fatalf("user must start inactive when confirmation is enabled")
	}
	if !user.IsUser {
		t.Fatalf("expected is_user to be set")
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 confirmation email, got %d", len(f.mailer.sent))
	}
	if f.mailer.sent[0].To != "a@b.com" {
		t.Fatalf("email sent to %q", f.mailer.sent[0].To)
	}
	if len(f.sessions.confirmations) != 1 {
		t.Fatalf("expected 1 stored confirmation token, got %d", len(f.sessions.confirmations))
	}
}

func TestRegister_Duplicate(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})

	if _, err := f.svc.Register(context.Background(), registration); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := f.svc.Register(context.Background(), registration); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegister_ConfirmationDisabled(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: false})

	if _, err := f.svc.Register(context.Background(), registration); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := f.users.FindByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if !user.IsActive {
		t.Fatalf("user must be created active when confirmation is disabled")
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no email expected, got %d", len(f.mailer.sent))
	}
}

func TestConfirmEmail_Flow(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true, ConfirmRedirectURL: "http://app/welcome"})

	if _, err := f.svc.Register(context.Background(), registration); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var confirmToken string
	for tok := range f.sessions.confirmations {
		confirmToken = tok
	}

	redirect, err := f.svc.ConfirmEmail(context.Background(), confirmToken)
	if err != nil {
		t.Fatalf("ConfirmEmail: %v", err)
	}
	if redirect != "http://app/welcome" {
		t.Fatalf("unexpected redirect %q", redirect)
	}

	user, _ := f.users.FindByEmail(context.Background(), "a@b.com")
	if !user.IsActive {
		t.Fatalf("user not activated")
	}

	// Single use.
	if _, err := f.svc.ConfirmEmail(context.Background(), confirmToken); !errors.Is(err, domain.ErrConfirmationInvalid) {
		t.Fatalf("expected ErrConfirmationInvalid on replay, got %v", err)
	}
}

func TestConfirmEmail_UnknownToken(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})

	if _, err := f.svc.ConfirmEmail(context.Background(), "nope"); !errors.Is(err, domain.ErrConfirmationInvalid) {
		t.Fatalf("expected ErrConfirmationInvalid, got %v", err)
	}
}

func TestConfirmEmail_UserVanished(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	f.sessions.confirmations["tok"] = "missing-user"

	if _, err := f.svc.ConfirmEmail(context.Background(), "tok"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func registerActive(t *testing.T, f *authFixture) *domain.User {
	t.Helper()
	if _, err := f.svc.Register(context.Background(), registration); err != nil {
		t.Fatalf("Register: %v", err)
	}
	user, err := f.users.FindByEmail(context.Background(), registration.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	active := true
	if _, err := f.users.Update(context.Background(), user.ID, ports.UserUpdate{IsActive: &active}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	user.IsActive = true
	return user
}

func TestAuthenticate_Success(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	pair, err := f.svc.Authenticate(context.Background(), ports.Credentials{Email: "a@b.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair")
	}

	stored, err := f.sessions.RefreshToken(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("refresh token not stored: %v", err)
	}
	if stored != pair.RefreshToken {
		t.Fatalf("stored refresh token differs from issued one")
	}

	claims, err := f.codec.Verify(pair.AccessToken, true)
	if err != nil {
		t.Fatalf("issued access token does not verify: %v", err)
	}
	if token.Subject(claims) != user.ID {
		t.Fatalf("access token sub = %q, want %q", token.Subject(claims), user.ID)
	}
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	registerActive(t, f)

	if _, err := f.svc.Authenticate(context.Background(), ports.Credentials{Email: "a@b.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), ports.Credentials{Email: "ghost@b.com", Password: "pw123456"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthenticate_NotActivated(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	if _, err := f.svc.Register(context.Background(), registration); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := f.svc.Authenticate(context.Background(), ports.Credentials{Email: "a@b.com", Password: "pw123456"}); !errors.Is(err, domain.ErrNotActivated) {
		t.Fatalf("expected ErrNotActivated, got %v", err)
	}
}

func TestAuthenticate_OverwritesPreviousRefreshToken(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)
	creds := ports.Credentials{Email: "a@b.com", Password: "pw123456"}

	first, err := f.svc.Authenticate(context.Background(), creds)
	if err != nil {
		t.Fatalf("first Authenticate: %v", err)
	}
	second, err := f.svc.Authenticate(context.Background(), creds)
	if err != nil {
		t.Fatalf("second Authenticate: %v", err)
	}

	stored, _ := f.sessions.RefreshToken(context.Background(), user.ID)
	if stored != second.RefreshToken {
		t.Fatalf("stored token is not the latest one")
	}
	if stored == first.RefreshToken {
		t.Fatalf("previous refresh token still stored; rotation did not invalidate it")
	}
}

func TestRefreshTokens_RotatesPair(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	pair, err := f.svc.Authenticate(context.Background(), ports.Credentials{Email: "a@b.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	next, err := f.svc.RefreshTokens(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if next.AccessToken == "" || next.RefreshToken == "" {
		t.Fatalf("expected non-empty rotated pair")
	}

	stored, _ := f.sessions.RefreshToken(context.Background(), user.ID)
	if stored != next.RefreshToken {
		t.Fatalf("rotation did not overwrite the stored refresh token")
	}
}

func TestRefreshTokens_AcceptsExpiredAccessToken(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	// Live session, but the presented access token is already expired.
	refresh, err := f.codec.Issue(jwt.MapClaims{"sub": user.ID}, time.Hour)
	if err != nil {
		t.Fatalf("Issue refresh: %v", err)
	}
	if err := f.sessions.SaveRefreshToken(context.Background(), user.ID, refresh, time.Hour); err != nil {
		t.Fatalf("SaveRefreshToken: %v", err)
	}
	expiredAccess, err := f.codec.Issue(jwt.MapClaims{"sub": user.ID}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue access: %v", err)
	}

	if _, err := f.svc.RefreshTokens(context.Background(), expiredAccess); err != nil {
		t.Fatalf("RefreshTokens with expired access token: %v", err)
	}
}

func TestRefreshTokens_NoSubject(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})

	anonymous, err := f.codec.Issue(jwt.MapClaims{}, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := f.svc.RefreshTokens(context.Background(), anonymous); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshTokens_NoStoredSession(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	access, err := f.codec.Issue(jwt.MapClaims{"sub": user.ID}, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := f.svc.RefreshTokens(context.Background(), access); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRefreshTokens_StoredRefreshExpired(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	staleRefresh, err := f.codec.Issue(jwt.MapClaims{"sub": user.ID}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := f.sessions.SaveRefreshToken(context.Background(), user.ID, staleRefresh, time.Hour); err != nil {
		t.Fatalf("SaveRefreshToken: %v", err)
	}
	access, err := f.codec.Issue(jwt.MapClaims{"sub": user.ID}, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := f.svc.RefreshTokens(context.Background(), access); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	pair, err := f.svc.Authenticate(context.Background(), ports.Credentials{Email: "a@b.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := f.svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.RefreshTokens(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}

	// Idempotent.
	if err := f.svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: true})
	user := registerActive(t, f)

	name := "Anna"
	updated, err := f.svc.UpdateUser(context.Background(), user.ID, ports.UserUpdate{FirstName: &name})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.FirstName != "Anna" {
		t.Fatalf("first name not updated: %q", updated.FirstName)
	}
	if updated.LastName != user.LastName {
		t.Fatalf("untouched field changed: %q", updated.LastName)
	}

	if _, err := f.svc.UpdateUser(context.Background(), "0b078e55-0000-0000-0000-000000000000", ports.UserUpdate{FirstName: &name}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetAllUsers(t *testing.T) {
	f := newAuthFixture(t, Config{ConfirmationEnabled: false})
	if _, err := f.svc.Register(context.Background(), registration); err != nil {
		t.Fatalf("Register: %v", err)
	}

	users, err := f.svc.GetAllUsers(context.Background())
	if err != nil {
		t.Fatalf("GetAllUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}
