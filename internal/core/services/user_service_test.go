package services

import (
	"context"
	"testing"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, *memUsers, *memTokens) {
	users := newMemUsers(t,
		models.User{ID: 1, Username: "rh.maria", Email: "maria@example.org", Password: "segredo123", Role: string(domain.RoleAdmin), IsActive: true},
		models.User{ID: 2, Username: "ana.op", Email: "ana@example.org", Password: "segredo123", Role: string(domain.RoleOperator), IsActive: true},
	)
	tokens := &memTokens{}
	return NewUserService(users, tokens), users, tokens
}

func TestUserService_CreateUser(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &CreateUserInput{Username: " novo.op ", Email: "Novo@Example.org", Password: "senha1234"})
	require.NoError(t, err)
	assert.Equal(t, "novo.op", created.Username)
	assert.Equal(t, "novo@example.org", created.Email)
	assert.Equal(t, string(domain.RoleOperator), created.Role)

	tests := []struct {
		name  string
		input CreateUserInput
		want  error
	}{
		{"weak password", CreateUserInput{Username: "x", Email: "x@example.org", Password: "short"}, ErrWeakPassword},
		{"unknown role", CreateUserInput{Username: "x", Email: "x@example.org", Password: "senha1234", Role: "ROOT"}, ErrInvalidRole},
		{"taken username", CreateUserInput{Username: "ana.op", Email: "x@example.org", Password: "senha1234"}, ErrUserAlreadyExists},
		{"taken email", CreateUserInput{Username: "x", Email: "ana@example.org", Password: "senha1234"}, ErrEmailAlreadyExists},
		{"missing email", CreateUserInput{Username: "x", Password: "senha1234"}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, &tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserService_LastAdminIsProtected(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	// an operator cannot remove the only admin
	assert.ErrorIs(t, svc.DeleteUser(ctx, 1, 2), ErrLastAdmin)

	demote := string(domain.RoleOperator)
	_, err := svc.UpdateUserByAdmin(ctx, 1, 2, &UpdateUserByAdminInput{Role: &demote})
	assert.ErrorIs(t, err, ErrLastAdmin)

	assert.ErrorIs(t, svc.DeleteUser(ctx, 1, 1), ErrCannotDeleteSelf)
	_, err = svc.UpdateUserByAdmin(ctx, 1, 1, &UpdateUserByAdminInput{Role: &demote})
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
}

func TestUserService_DeactivationEndsSessions(t *testing.T) {
	svc, _, tokens := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{UserID: 2, TokenHash: "a"}))
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{UserID: 2, TokenHash: "b"}))

	inactive := false
	updated, err := svc.UpdateUserByAdmin(ctx, 2, 1, &UpdateUserByAdminInput{IsActive: &inactive})

	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 0, tokens.active(2))
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, _, tokens := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{UserID: 2, TokenHash: "a"}))

	err := svc.ChangePassword(ctx, 2, &ChangePasswordInput{OldPassword: "wrong1234", NewPassword: "nova12345"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	err = svc.ChangePassword(ctx, 2, &ChangePasswordInput{OldPassword: "segredo123", NewPassword: "nova12345"})
	require.NoError(t, err)
	assert.Equal(t, 0, tokens.active(2))

	assert.ErrorIs(t, svc.ChangePassword(ctx, 99, &ChangePasswordInput{}), ErrUserNotFound)
}
