package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dompet/internal/services"
)

// StatisticsHandler serves period reports and the dashboard.
type StatisticsHandler struct {
	statisticsService services.StatisticsServicer
	now               func() time.Time
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(statisticsService services.StatisticsServicer) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, now: time.Now}
}

// GetStatistics handles the period report
// @Summary     Get statistics
// @Description Totals, savings rate, expense by category, monthly series and budget utilization for a period. from/to override period.
// @Tags        statistics
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "month, 3months, 6months or year (default month)"
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} services.Statistics "Period statistics"
// @Failure     400 {object} ErrorResponse "Invalid period or range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rng, err := bindRange(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.statisticsService.GetStatistics(c.Request.Context(), userID, rng)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDashboard handles the overview
// @Summary     Get dashboard
// @Description Account balances, total balance, this month's income, expense and savings rate, and the latest transactions
// @Tags        statistics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.statisticsService.GetDashboard(c.Request.Context(), userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
