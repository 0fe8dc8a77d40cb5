package handlers

import (
	"errors"
	"strings"
	"time"

	"bioponto/internal/config"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// AuthHandler serves the back-office operator session endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles operator login
// @Summary Login operator
// @Description Authenticate a back-office operator and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	sess, err := h.authService.Login(c.Context(), &services.LoginInput{Username: username, Password: req.Password})
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid username or password")
	case errors.Is(err, services.ErrUserInactive):
		return response.Forbidden(c, "User account is inactive")
	case err != nil:
		return response.InternalServerError(c, "Failed to login")
	}

	return h.startSession(c, "Login successful", sess)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotate the refresh token cookie and issue a new access token
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if token == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	sess, err := h.authService.RefreshToken(c.Context(), token)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			msg = "Session expired, please login again"
		case errors.Is(err, services.ErrTokenRevoked):
			msg = "Session revoked, please login again"
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrUserNotFound):
			msg = "Invalid refresh token"
		case errors.Is(err, services.ErrUserInactive):
			h.clearSession(c)
			return response.Forbidden(c, "User account is inactive")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
		h.clearSession(c)
		return response.Unauthorized(c, msg)
	}

	return h.startSession(c, "Token refreshed successfully", sess)
}

// Logout handles operator logout
// @Summary Logout operator
// @Description Revoke the current refresh token and clear cookies
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(refreshCookie); token != "" {
		_ = h.authService.Logout(c.Context(), token)
	}
	h.clearSession(c)
	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke every refresh token of the operator
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.authService.LogoutAll(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}
	h.clearSession(c)
	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current operator
// @Summary Get current operator
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return response.NotFound(c, "User not found")
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to get user")
	}
	return response.Success(c, "User retrieved successfully", fiber.Map{"user": user.ToResponse()})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, message string, sess *services.Session) error {
	h.setCookie(c, accessCookie, sess.AccessToken, h.cfg.JWT.AccessTokenMins*60)
	h.setCookie(c, refreshCookie, sess.RefreshToken, h.cfg.JWT.RefreshTokenDays*24*60*60)
	return response.Success(c, message, fiber.Map{
		"access_token": sess.AccessToken,
		"user":         sess.User,
	})
}

func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	h.setCookie(c, accessCookie, "", -1)
	h.setCookie(c, refreshCookie, "", -1)
}

// setCookie writes an HttpOnly cookie; a negative maxAge deletes it
func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, maxAge int) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	c.Cookie(cookie)
}
