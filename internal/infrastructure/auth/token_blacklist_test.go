package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	bl := NewInMemoryTokenBlacklist()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry expires with the token")
	assert.Empty(t, bl.revoked)
}

func TestRevokeIgnoresExpiredTokens(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	require.NoError(t, bl.Revoke(context.Background(), "jti", 0))
	assert.Empty(t, bl.revoked)
}
