package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/api/middleware"
	"github.com/nazotronic/Tourify/internal/services"
)

// DashboardHandler handles the analytics dashboard endpoint.
type DashboardHandler struct {
	dashboardService services.IDashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.IDashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary handles GET /dashboard. Users see analytics over their own
// bookings, admins over the whole store.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	summary, err := h.dashboardService.Summary(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
