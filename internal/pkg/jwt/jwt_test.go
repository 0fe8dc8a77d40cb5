package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(7, "maria", "ADMIN", "secret", 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(7, "maria", "ADMIN", "secret", 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(7, "maria", "ADMIN", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	refresh, err := GenerateRefreshToken(7, "token-id", "refresh-secret", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(refresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "token-id", claims.TokenID)

	_, err = ValidateAccessToken(refresh, "secret")
	assert.Error(t, err)
}

func TestForeignIssuerIsRejected(t *testing.T) {
	claims := Claims{UserID: 1, Username: "x", Role: "ADMIN", RegisteredClaims: registered("x", time.Minute)}
	claims.Issuer = "someone-else"
	token, err := sign(claims, "secret")
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
