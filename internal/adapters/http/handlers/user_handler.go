package handlers

import (
	"errors"

	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/pagination"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles operator management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers handles listing all operators (Admin only)
// @Summary List operators
// @Description Get a paginated list of back-office operators (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Username, name or email"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.Context(), pagination.GetParams(c), c.Query("search"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// CreateUser handles creating an operator (Admin only)
// @Summary Create operator
// @Description Create a back-office operator account (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "Operator data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.CreateUser(c.Context(), &req)
	if err != nil {
		return userError(c, err, "Failed to create user")
	}
	return response.Created(c, "User created successfully", fiber.Map{"user": user})
}

// GetUser handles getting an operator by ID (Admin only)
// @Summary Get operator by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return userError(c, err, "Failed to get user")
	}
	return response.Success(c, "User retrieved successfully", fiber.Map{"user": user})
}

// UpdateUser handles updating an operator (Admin only)
// @Summary Update operator
// @Description Update name, email, role or active flag. Deactivation ends all sessions.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserByAdminInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req services.UpdateUserByAdminInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminID, _ := c.Locals("userID").(uint)

	user, err := h.userService.UpdateUserByAdmin(c.Context(), id, adminID, &req)
	if err != nil {
		return userError(c, err, "Failed to update user")
	}
	return response.Success(c, "User updated successfully", fiber.Map{"user": user})
}

// DeleteUser handles deleting an operator (Admin only)
// @Summary Delete operator
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	adminID, _ := c.Locals("userID").(uint)

	if err := h.userService.DeleteUser(c.Context(), id, adminID); err != nil {
		return userError(c, err, "Failed to delete user")
	}
	return response.Success(c, "User deleted successfully", nil)
}

// ChangePassword handles changing the operator's own password
// @Summary Change password
// @Description Change the current operator's password and end all sessions
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new password are required")
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &req); err != nil {
		return userError(c, err, "Failed to change password")
	}
	return response.Success(c, "Password changed successfully, please login again", nil)
}

func userError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Username and email are required")
	case errors.Is(err, services.ErrInvalidRole):
		return response.BadRequest(c, "Invalid role. Must be OPERATOR or ADMIN")
	case errors.Is(err, services.ErrWeakPassword):
		return response.BadRequest(c, "Password must have at least 8 characters with letters and digits")
	case errors.Is(err, services.ErrOldPasswordWrong):
		return response.BadRequest(c, "Old password is incorrect")
	case errors.Is(err, services.ErrCannotDeleteSelf):
		return response.BadRequest(c, "Cannot delete your own account")
	case errors.Is(err, services.ErrCannotChangeOwnRole):
		return response.BadRequest(c, "Cannot change your own role or deactivate yourself")
	case errors.Is(err, services.ErrUserAlreadyExists):
		return response.Conflict(c, "Username already exists")
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return response.Conflict(c, "Email already exists")
	case errors.Is(err, services.ErrLastAdmin):
		return response.Conflict(c, "At least one active admin is required")
	}
	return response.InternalServerError(c, fallback)
}
