package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/config"
	"bioponto/internal/pkg/jwt"
	"bioponto/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password must have at least 8 characters with letters and digits")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService issues and rotates back-office operator sessions. Kiosks never
// go through it; they authenticate with the shared kiosk key.
type AuthService struct {
	users  repositories.UserRepository
	tokens repositories.RefreshTokenRepository
	jwt    config.JWTConfig
	clock  Clock
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, tokens repositories.RefreshTokenRepository, cfg *config.Config, clock Clock) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: cfg.JWT, clock: clock}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is what a successful login or refresh hands back
type Session struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Login checks the operator's password and opens a new session
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	sess, stored, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, stored); err != nil {
		return nil, err
	}

	log.Printf("🔐 Operator %s logged in", user.Username)
	return sess, nil
}

// RefreshToken trades a refresh token for a new pair. The presented token is
// revoked in the same transaction that stores its successor.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwt.RefreshSecret)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrInvalidToken
	}

	current, err := s.tokens.FindActive(ctx, password.HashToken(refreshToken))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// signature is fine but the session was revoked (logout, rotation, role change)
		return nil, ErrTokenRevoked
	}
	if err != nil {
		return nil, err
	}
	if current.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	if !current.ExpiresAt.After(s.clock()) {
		return nil, ErrTokenExpired
	}

	user, err := s.GetUserByID(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	sess, next, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, current.ID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	return sess, nil
}

// Logout revokes one session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes every session of the operator
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.tokens.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}
	log.Printf("🔐 All sessions revoked for operator %d", userID)
	return nil
}

// GetUserByID gets an operator by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// issue signs a new token pair and returns the row to persist for the refresh half
func (s *AuthService) issue(user *models.User) (*Session, *models.RefreshToken, error) {
	access, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.jwt.Secret, s.jwt.AccessTokenMins)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := jwt.GenerateRefreshToken(user.ID, uuid.NewString(), s.jwt.RefreshSecret, s.jwt.RefreshTokenDays)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refresh),
		ExpiresAt: s.clock().AddDate(0, 0, s.jwt.RefreshTokenDays),
	}
	return &Session{User: user.ToResponse(), AccessToken: access, RefreshToken: refresh}, stored, nil
}
