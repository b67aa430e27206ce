package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, 5*time.Minute, time.Hour)

	token, err := m.GenerateAccessToken("TEAM-007")
	require.NoError(t, err)

	claims, err := m.ParseToken(token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "TEAM-007", claims.Subject)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := NewTokenManager(testSecret, 5*time.Minute, time.Hour)

	token, err := m.GenerateRefreshToken("TEAM-007")
	require.NoError(t, err)

	_, err = m.ParseToken(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute, time.Hour)
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken("TEAM-007")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.ParseToken(token, TokenTypeAccess)
	assert.Error(t, err)
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	other := NewTokenManager("ffffffffffffffffffffffffffffffff", time.Minute, time.Hour)
	token, err := other.GenerateAccessToken("TEAM-007")
	require.NoError(t, err)

	m := NewTokenManager(testSecret, time.Minute, time.Hour)
	_, err = m.ParseToken(token, TokenTypeAccess)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("s3cr3t!X")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cr3t!X", hash)
	assert.True(t, h.Compare(hash, "s3cr3t!X"))
	assert.False(t, h.Compare(hash, "s3cr3t!x"))
}
