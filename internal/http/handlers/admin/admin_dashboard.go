package admin

import (
	"github.com/smartskincare/api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns the back-office headline numbers. The
// optional date narrows the appointment counters.
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	overview, err := h.DashboardService.GetOverview(c.Query("date"))
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load dashboard", err)
		return
	}

	response.Success(c, overview)
}
