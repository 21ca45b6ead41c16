package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/middleware"
	"github.com/bajeti/bajeti-backend/internal/service"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CategorySpendResponse is one row of the spending report
type CategorySpendResponse struct {
	CategoryID       int32  `json:"categoryId"`
	CategoryName     string `json:"categoryName"`
	TotalSpent       string `json:"totalSpent"`
	TransactionCount int    `json:"transactionCount"`
	PercentOfTotal   string `json:"percentOfTotal"`
}

// SpendingReportResponse is the per-category spending breakdown for a month
type SpendingReportResponse struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Categories []CategorySpendResponse `json:"categories"`
	TotalSpent string                  `json:"totalSpent"`
}

// GetSpendingReport handles GET /api/v1/reports/spending/:year/:month
// ?includeIncome=true folds income transactions into the breakdown
func (h *ReportHandler) GetSpendingReport(c echo.Context) error {
	userID := middleware.GetUserID(c)

	year, month, verrs := parsePeriodParams(c)
	if verrs != nil {
		return NewValidationError(c, "Invalid period", verrs)
	}
	includeIncome := queryFlag(c, "includeIncome")

	rows, err := h.reportService.GetSpendingReport(userID, year, month, includeIncome)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).
			Int("year", year).Int("month", month).Msg("Failed to build spending report")
		return NewInternalError(c, "Failed to build spending report")
	}

	resp := SpendingReportResponse{
		Year:       year,
		Month:      month,
		Categories: make([]CategorySpendResponse, 0, len(rows)),
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalSpent)
	}
	resp.TotalSpent = total.StringFixed(2)
	for _, row := range rows {
		resp.Categories = append(resp.Categories, CategorySpendResponse{
			CategoryID:       row.CategoryID,
			CategoryName:     row.CategoryName,
			TotalSpent:       row.TotalSpent.StringFixed(2),
			TransactionCount: row.TransactionCount,
			PercentOfTotal:   row.PercentOfTotal.StringFixed(2),
		})
	}

	return c.JSON(http.StatusOK, resp)
}
