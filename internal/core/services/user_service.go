package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/pagination"
	"bioponto/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrInvalidRole         = errors.New("invalid role")
	ErrLastAdmin           = errors.New("cannot remove the last active admin")
)

// UserService manages back-office operators
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// CreateUserInput represents create operator input (admin only)
type CreateUserInput struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserByAdminInput represents update user input (for admin)
type UpdateUserByAdminInput struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers lists operators with pagination
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params, search string) (*pagination.Response, error) {
	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	userResponses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToResponse()
	}

	return pagination.NewResponse(userResponses, params, total), nil
}

// CreateUser creates an operator account
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" || input.Email == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Role == "" {
		input.Role = string(domain.RoleOperator)
	}
	if !validRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		FullName: strings.TrimSpace(input.FullName),
		Email:    input.Email,
		Password: hashedPassword,
		Role:     input.Role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Operator created: %s (%s)", user.Username, user.Role)
	return user.ToResponse(), nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUserByAdmin updates a user by admin
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id uint, adminID uint, input *UpdateUserByAdminInput) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	// Prevent admin from changing own role or locking themselves out
	if id == adminID && (input.Role != nil || (input.IsActive != nil && !*input.IsActive)) {
		return nil, ErrCannotChangeOwnRole
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}

	demotesAdmin := user.Role == string(domain.RoleAdmin) &&
		((input.Role != nil && *input.Role != string(domain.RoleAdmin)) || (input.IsActive != nil && !*input.IsActive))
	if demotesAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	if input.Role != nil {
		if !validRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// A deactivated operator loses every session at once
	if !user.IsActive {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
			log.Printf("⚠️ Failed to revoke sessions of %s: %v", user.Username, err)
		}
	}

	return user.ToResponse(), nil
}

// DeleteUser deletes a user (soft delete)
func (s *UserService) DeleteUser(ctx context.Context, id uint, adminID uint) error {
	// Prevent admin from deleting self
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == string(domain.RoleAdmin) && user.IsActive {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// ChangePassword changes the operator's own password and ends the other sessions
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

func (s *UserService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ensureAnotherAdmin fails when the only active admin is about to go away
func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func validRole(role string) bool {
	return role == string(domain.RoleAdmin) || role == string(domain.RoleOperator)
}
