package handlers

import (
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAttendance returns today's attendance per unit
// @Summary Attendance dashboard
// @Description Today's present, working, completed, on-vacation and absent counts per unit
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetAttendance(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAttendanceDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get attendance dashboard")
	}

	return response.Success(c, "Attendance dashboard retrieved successfully", data)
}
