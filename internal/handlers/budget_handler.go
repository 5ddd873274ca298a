package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "dompet/internal/errors"
	"dompet/internal/pagination"
	"dompet/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
	now           func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService, now: time.Now}
}

// SetBudgetLimitRequest sets or, with an explicit null limit, clears a
// category's monthly budget. The limit key is required.
type SetBudgetLimitRequest struct {
	Limit NullableAmount `json:"limit" swaggertype:"integer"`
}

// NullableAmount tells a JSON null apart from a missing key.
type NullableAmount struct {
	Present bool
	Value   *int64 `binding:"omitempty,gt=0"`
}

// UnmarshalJSON marks the amount present, including for null.
func (n *NullableAmount) UnmarshalJSON(data []byte) error {
	n.Present = true
	n.Value = nil
	if string(data) == "null" {
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// GetBudgets handles listing budget utilization
// @Summary     Get budgets
// @Description Utilization of every budget-bearing category for a period, highest first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "month, 3months, 6months or year (default month)"
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Success     200 {array} stats.BudgetItem "Budget items"
// @Failure     400 {object} ErrorResponse "Invalid period or range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
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

	items, err := h.budgetService.GetBudgets(c.Request.Context(), userID, rng)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"range": rng, "budgets": items})
}

// SetBudgetLimit handles setting a category's budget limit
// @Summary     Set budget limit
// @Description Set or clear the monthly budget limit of an expense category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       category_id path string true "Category ID"
// @Param       request body SetBudgetLimitRequest true "Limit, or null to clear"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input or income category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{category_id} [put]
func (h *BudgetHandler) SetBudgetLimit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if !req.Limit.Present {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit is required, send null to clear it"))
		return
	}

	category, err := h.budgetService.SetBudgetLimit(c.Request.Context(), userID, categoryID, req.Limit.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_BUDGET_LIMIT", "category", categoryID, c.ClientIP(),
		map[string]any{"limit": req.Limit.Value})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// GetAlerts handles listing budget alerts
// @Summary     Get budget alerts
// @Description Paginated list of recorded budget alerts, newest first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetAlert] "Paginated alerts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts [get]
func (h *BudgetHandler) GetAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetAlerts(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
