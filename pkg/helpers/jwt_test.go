package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(ttl time.Duration) *JWTManager {
	return &JWTManager{AccessSecret: []byte("a-secret"), RefreshSecret: []byte("r-secret"), AccessTTL: ttl, RefreshTTL: ttl}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := testManager(time.Minute)
	tok, exp, err := m.GenerateAccessToken("op-1", "sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
	assert.Equal(t, "sid-1", claims.SessionID)

	_, err = m.ParseRefreshToken(tok)
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	t.Parallel()

	m := testManager(-time.Minute)
	tok, _, err := m.GenerateRefreshToken("op-1", "sid-1")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(tok)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "correct-horse"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))
}
