package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finledger/internal/errors"
	"finledger/internal/services"
)

// DashboardHandler handles aggregated ledger reads.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// referenceTime reads the optional "at" query parameter, defaulting to now.
// Reports stay reproducible when callers pin the reference instant.
func referenceTime(c *gin.Context) (time.Time, error) {
	raw := c.Query("at")
	if raw == "" {
		return time.Now(), nil
	}
	return parseFlexibleTime(raw)
}

// GetConsolidatedBalance handles the consolidated balance read
// @Summary     Get consolidated balance
// @Description Sum the balances of all active non-card accounts
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       at query string false "Reference date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.ConsolidatedBalance "Consolidated balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/balance [get]
func (h *DashboardHandler) GetConsolidatedBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	at, err := referenceTime(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.dashboardService.ConsolidatedBalance(userID, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPeriodResult handles the income vs expense window read
// @Summary     Get period totals
// @Description Income and expense totals over one reporting window
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       window query string false "currentMonth, remainingMonth, or fullMonth (default currentMonth)"
// @Param       at     query string false "Reference date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.PeriodResult "Period totals"
// @Failure     400 {object} ErrorResponse "Unknown window"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/period [get]
func (h *DashboardHandler) GetPeriodResult(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	window := services.PeriodWindow(c.DefaultQuery("window", string(services.PeriodCurrentMonth)))
	at, err := referenceTime(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.dashboardService.PeriodResult(userID, window, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpensesByCategory handles the categorized expense breakdown read
// @Summary     Get expenses by category
// @Description Group expenses by category over a window, largest first
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start date (inclusive)"
// @Param       to   query string false "End date (inclusive)"
// @Param       at   query string false "Reference date used when from/to are absent"
// @Success     200 {object} services.ExpenseBreakdown "Expense breakdown"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/expenses-by-category [get]
func (h *DashboardHandler) GetExpensesByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseFlexibleTime(raw)
		if err != nil {
			respondWithError(c, err)
			return
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseFlexibleTime(raw)
		if err != nil {
			respondWithError(c, err)
			return
		}
		to = &parsed
	}
	at, err := referenceTime(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.dashboardService.ExpensesByCategory(userID, from, to, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCashFlow handles the trailing monthly cash flow read
// @Summary     Get cash flow
// @Description Monthly income, expense, and net over a trailing window
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       months query int    false "Months to include, newest last (default 12)"
// @Param       at     query string false "Reference date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.CashFlowReport "Cash flow series"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/cash-flow [get]
func (h *DashboardHandler) GetCashFlow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months := 12
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid months value"))
			return
		}
		months = parsed
	}
	at, err := referenceTime(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.dashboardService.CashFlow(userID, months, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSummary handles the combined dashboard read
// @Summary     Get dashboard summary
// @Description Consolidated balance plus current and remaining month totals
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       at query string false "Reference date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.DashboardSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	at, err := referenceTime(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.dashboardService.Summary(userID, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
