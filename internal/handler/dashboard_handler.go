package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/middleware"
	"github.com/bajeti/bajeti-backend/internal/service"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// AccountBalanceResponse is one account line on the dashboard
type AccountBalanceResponse struct {
	AccountID int32  `json:"accountId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
}

// DashboardSummaryResponse is the combined current-month view
type DashboardSummaryResponse struct {
	Rollup       RollupResponse           `json:"rollup"`
	Accounts     []AccountBalanceResponse `json:"accounts"`
	TotalBalance string                   `json:"totalBalance"`
}

// GetSummary handles GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.dashboardService.GetSummary(userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to build dashboard summary")
		return NewInternalError(c, "Failed to build dashboard summary")
	}

	resp := DashboardSummaryResponse{
		Rollup:       toRollupResponse(summary.Rollup),
		Accounts:     make([]AccountBalanceResponse, 0, len(summary.Accounts)),
		TotalBalance: summary.TotalBalance.StringFixed(2),
	}
	for _, account := range summary.Accounts {
		resp.Accounts = append(resp.Accounts, AccountBalanceResponse{
			AccountID: account.AccountID,
			Name:      account.Name,
			Type:      string(account.Type),
			Balance:   account.Balance.StringFixed(2),
			Currency:  account.Currency,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
