package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenBlacklist_InMemory(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist(nil, zap.NewNop())

	assert.False(t, bl.IsRevoked(ctx, "tok-a"))

	require.NoError(t, bl.Revoke(ctx, "tok-a", time.Now().Add(time.Hour)))
	assert.True(t, bl.IsRevoked(ctx, "tok-a"))
	assert.False(t, bl.IsRevoked(ctx, "tok-b"))
}

func TestTokenBlacklist_IgnoresExpiredTokens(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist(nil, nil)

	require.NoError(t, bl.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	assert.False(t, bl.IsRevoked(ctx, "old"))

	require.NoError(t, bl.Revoke(ctx, "short", time.Now().Add(20*time.Millisecond)))
	assert.True(t, bl.IsRevoked(ctx, "short"))
	assert.Eventually(t, func() bool { return !bl.IsRevoked(ctx, "short") }, time.Second, 10*time.Millisecond)
}

func TestTokenBlacklist_RevokeEvictsExpired(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist(nil, nil)

	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, bl.Revoke(ctx, tok, time.Now().Add(20*time.Millisecond)))
	}
	assert.Len(t, bl.entries, 3)

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, bl.Revoke(ctx, "fresh", time.Now().Add(time.Hour)))
	assert.Len(t, bl.entries, 1)
	assert.True(t, bl.IsRevoked(ctx, "fresh"))
}
