package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// TokenStore is a key/value store with expiry. Redis backs it in production.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

type RedisTokenStore struct {
	Client *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{Client: rdb}
}

func (s *RedisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

// TokenService issues CSRF tokens and tracks signed-out JWTs.
type TokenService struct {
	Store   TokenStore
	CSRFTTL time.Duration
}

func NewTokenService(store TokenStore, csrfTTL time.Duration) *TokenService {
	if csrfTTL <= 0 {
		csrfTTL = 2 * time.Hour
	}
	return &TokenService{Store: store, CSRFTTL: csrfTTL}
}

func csrfKey(token string) string {
	return "csrf:" + token
}

func revokedKey(jti string) string {
	return "jwt:revoked:" + jti
}

// IssueCSRF binds a fresh token to the user.
func (s *TokenService) IssueCSRF(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	if err := s.Store.Set(ctx, csrfKey(token), fmt.Sprint(userID), s.CSRFTTL); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateCSRF accepts a token only for the user it was issued to.
func (s *TokenService) ValidateCSRF(ctx context.Context, userID uint, token string) error {
	if token == "" {
		return util.ErrInvalidCSRFToken
	}
	owner, ok, err := s.Store.Get(ctx, csrfKey(token))
	if err != nil {
		return err
	}
	if !ok || owner != fmt.Sprint(userID) {
		return util.ErrInvalidCSRFToken
	}
	return nil
}

func (s *TokenService) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if jti == "" || ttl <= 0 {
		return nil
	}
	return s.Store.Set(ctx, revokedKey(jti), "1", ttl)
}

func (s *TokenService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, ok, err := s.Store.Get(ctx, revokedKey(jti))
	return ok, err
}
