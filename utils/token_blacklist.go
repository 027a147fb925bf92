package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// TokenBlacklist remembers revoked tokens until they would have expired. It
// prefers Redis so revocations are shared across instances and falls back to
// process memory when no client is configured.
type TokenBlacklist struct {
	rc     *redis.Client
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewTokenBlacklist creates a blacklist. rc may be nil.
func NewTokenBlacklist(rc *redis.Client, logger *zap.Logger) *TokenBlacklist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenBlacklist{rc: rc, logger: logger, entries: map[string]time.Time{}}
}

// Revoke stores token until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err()
	}
	b.mu.Lock()
	b.cleanupExpiredLocked(time.Now())
	b.entries[token] = expiresAt
	b.mu.Unlock()
	return nil
}

// IsRevoked reports whether token was revoked before its natural expiration.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, blacklistKeyPrefix+token).Result()
		if err != nil {
			// fail open
			b.logger.Warn("token blacklist lookup failed", zap.Error(err))
			return false
		}
		return n > 0
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		b.mu.Lock()
		delete(b.entries, token)
		b.mu.Unlock()
		return false
	}
	return true
}

func (b *TokenBlacklist) cleanupExpiredLocked(now time.Time) {
	for token, expiresAt := range b.entries {
		if now.After(expiresAt) {
			delete(b.entries, token)
		}
	}
}
