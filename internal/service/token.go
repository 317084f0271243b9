package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// tokenPrefix marks all session tokens issued by this service.
	tokenPrefix = "ttk_"

	// tokenRedisKeyPrefix is the Redis key prefix for stored tokens.
	tokenRedisKeyPrefix = "tradetoolkit:token:"
)

// sessionData is what gets stored with a token.
type sessionData struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues and validates short-lived session tokens backed by
// Redis, so clients exchange a long-lived API key for a revocable session.
type TokenService struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewTokenService creates a token service. Returns nil without a Redis
// client; the auth middleware then falls back to plain API keys.
func NewTokenService(redisClient *redis.Client, ttl time.Duration) *TokenService {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{redis: redisClient, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken creates a new session token and stores it in Redis.
func (s *TokenService) GenerateToken(ctx context.Context) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := tokenPrefix + hex.EncodeToString(raw)

	now := time.Now()
	data, err := json.Marshal(sessionData{CreatedAt: now, ExpiresAt: now.Add(s.ttl)})
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := s.redis.Set(ctx, tokenRedisKeyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	log.Printf("[TokenService] Issued session token, expires in %v", s.ttl)
	return token, nil
}

// ValidateToken checks that a token exists and has not expired.
func (s *TokenService) ValidateToken(ctx context.Context, token string) error {
	if len(token) < len(tokenPrefix) || token[:len(tokenPrefix)] != tokenPrefix {
		return fmt.Errorf("invalid token format")
	}

	key := tokenRedisKeyPrefix + token
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("token not found or expired")
	}
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse session: %w", err)
	}
	if time.Now().After(data.ExpiresAt) {
		s.redis.Del(ctx, key)
		return fmt.Errorf("token expired")
	}
	return nil
}

// RevokeToken deletes a token from Redis.
func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	return s.redis.Del(ctx, tokenRedisKeyPrefix+token).Err()
}
