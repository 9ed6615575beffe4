package handler

import (
	"strconv"

	reportapp "github.com/erp/stockflow/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the read-only dashboard aggregates
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats godoc
// @ID           getDashboardStats
// @Summary      Dashboard statistics
// @Description  Entity counts, completed sales revenue and the low-stock list
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[report.DashboardStats]
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// GetRecentActivity godoc
// @ID           getRecentActivity
// @Summary      Recent orders
// @Description  Newest sales and purchase orders merged
// @Tags         dashboard
// @Produce      json
// @Param        limit query int false "Maximum entries (max 50)" default(10)
// @Success      200 {object} APIResponse[[]report.ActivityEntry]
// @Failure      400 {object} ErrorResponse
// @Router       /dashboard/recent-activity [get]
func (h *DashboardHandler) GetRecentActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.dashboardService.GetRecentActivity(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetRevenueByMonth godoc
// @ID           getRevenueByMonth
// @Summary      Monthly revenue
// @Description  Completed sales revenue for the trailing 12 UTC months, oldest first
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[[]report.MonthlyRevenue]
// @Router       /dashboard/revenue-by-month [get]
func (h *DashboardHandler) GetRevenueByMonth(c *gin.Context) {
	months, err := h.dashboardService.GetMonthlyRevenue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, months)
}
