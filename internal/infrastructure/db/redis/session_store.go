package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authhub/identity-service/internal/core/domain"
)

// SessionStore implements ports.SessionStore on Redis.
// Key layout:
//
//	refresh:<user_id>  → current refresh token, TTL = refresh lifetime
//	confirm:<token>    → user id, TTL = confirmation window
//
// Overwriting refresh:<user_id> is how rotation and revocation happen;
// single SET/GET/DEL atomicity is all the store relies on.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, refreshKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *SessionStore) RefreshToken(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return val, nil
}

func (s *SessionStore) DeleteRefreshToken(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *SessionStore) SaveConfirmation(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, confirmKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("save confirmation token: %w", err)
	}
	return nil
}

func (s *SessionStore) ConfirmationUserID(ctx context.Context, token string) (string, error) {
	val, err := s.client.Get(ctx, confirmKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrConfirmationInvalid
	}
	if err != nil {
		return "", fmt.Errorf("get confirmation token: %w", err)
	}
	return val, nil
}

func (s *SessionStore) DeleteConfirmation(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, confirmKey(token)).Err(); err != nil {
		return fmt.Errorf("delete confirmation token: %w", err)
	}
	return nil
}

func refreshKey(userID string) string {
	return "refresh:" + userID
}

func confirmKey(token string) string {
	return "confirm:" + token
}
