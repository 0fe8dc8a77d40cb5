// Package jwt signs and checks the back-office operator tokens.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every operator token
const Issuer = "bioponto"

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims is carried by access tokens
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is carried by refresh tokens. TokenID keeps two tokens issued
// in the same second distinct, so their stored hashes never collide.
type RefreshClaims struct {
	UserID  uint   `json:"user_id"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

func registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    Issuer,
		Subject:   subject,
	}
}

func sign(claims jwt.Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GenerateAccessToken signs a short lived operator token
func GenerateAccessToken(userID uint, username, role, secret string, expiryMinutes int) (string, error) {
	return sign(Claims{
		UserID:           userID,
		Username:         username,
		Role:             role,
		RegisteredClaims: registered(username, time.Duration(expiryMinutes)*time.Minute),
	}, secret)
}

// GenerateRefreshToken signs a refresh token valid for expiryDays
func GenerateRefreshToken(userID uint, tokenID, secret string, expiryDays int) (string, error) {
	return sign(RefreshClaims{
		UserID:           userID,
		TokenID:          tokenID,
		RegisteredClaims: registered("", time.Duration(expiryDays)*24*time.Hour),
	}, secret)
}

// ValidateAccessToken validates an access token and returns claims
func ValidateAccessToken(tokenString, secret string) (*Claims, error) {
	return parse(tokenString, secret, &Claims{})
}

// ValidateRefreshToken validates a refresh token and returns claims
func ValidateRefreshToken(tokenString, secret string) (*RefreshClaims, error) {
	return parse(tokenString, secret, &RefreshClaims{})
}

func parse[C jwt.Claims](tokenString, secret string, claims C) (C, error) {
	var zero C
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return zero, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return zero, ErrTokenInvalid
	}
	return claims, nil
}
