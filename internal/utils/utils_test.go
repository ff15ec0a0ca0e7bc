package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	tok, err := NewAccessToken("s3cret", "user-1", "CREATOR", 15, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), tok.Exp, time.Second)

	c, err := ParseAccessToken("s3cret", tok.Token, now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, "CREATOR", c.Role)
}

func TestParseAccessTokenRejects(t *testing.T) {
	now := time.Now().UTC()
	tok, err := NewAccessToken("s3cret", "user-1", "USER", 15, now)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token, now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", "user-1", "USER", 1, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", expired.Token, now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", raw, now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	now := time.Now().UTC()
	rt, err := NewRefreshToken(30, now)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.Equal(t, now.Add(30*24*time.Hour), rt.Exp)

	h := HashRefreshRaw(rt.Raw)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, h, HashRefreshRaw(rt.Raw+"x"))
}

func TestOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		c, err := NewOTP()
		require.NoError(t, err)
		assert.True(t, ValidOTP(c), c)
	}
	assert.True(t, ValidPhone("9876543210"))
	assert.False(t, ValidPhone("98765"))
	assert.False(t, ValidPhone("98765432ab"))
	assert.False(t, ValidOTP("12345"))
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "correct horse"))
	assert.False(t, VerifyPassword(h, "wrong"))
	assert.False(t, VerifyPassword("", ""))

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
