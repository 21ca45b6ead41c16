package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/middleware"
	"github.com/bajeti/bajeti-backend/internal/service"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SplitRequest is a percentage split in request bodies
type SplitRequest struct {
	Needs   string `json:"needs"`
	Wants   string `json:"wants"`
	Savings string `json:"savings"`
}

func (r SplitRequest) toDomain() (domain.Split, []ValidationError) {
	needs, err := decimal.NewFromString(r.Needs)
	if err != nil {
		return domain.Split{}, []ValidationError{{Field: "split.needs", Message: "Must be a decimal number"}}
	}
	wants, err := decimal.NewFromString(r.Wants)
	if err != nil {
		return domain.Split{}, []ValidationError{{Field: "split.wants", Message: "Must be a decimal number"}}
	}
	savings, err := decimal.NewFromString(r.Savings)
	if err != nil {
		return domain.Split{}, []ValidationError{{Field: "split.savings", Message: "Must be a decimal number"}}
	}
	return domain.Split{Needs: needs, Wants: wants, Savings: savings}, nil
}

// SplitResponse is a percentage split in responses
type SplitResponse struct {
	Needs   string `json:"needs"`
	Wants   string `json:"wants"`
	Savings string `json:"savings"`
}

func toSplitResponse(s domain.Split) SplitResponse {
	return SplitResponse{
		Needs:   s.Needs.StringFixed(2),
		Wants:   s.Wants.StringFixed(2),
		Savings: s.Savings.StringFixed(2),
	}
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID        int32         `json:"id"`
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Income    string        `json:"income"`
	Currency  string        `json:"currency"`
	Split     SplitResponse `json:"split"`
	CreatedAt string        `json:"createdAt"`
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        budget.ID,
		Year:      budget.Year,
		Month:     budget.Month,
		Income:    budget.Income.StringFixed(2),
		Currency:  budget.Currency,
		Split:     toSplitResponse(budget.Split),
		CreatedAt: budget.CreatedAt.Format(time.RFC3339),
	}
}

// CategoryAllocationRequest is one per-category allocation row
type CategoryAllocationRequest struct {
	CategoryID int32  `json:"categoryId"`
	Group      string `json:"group"`
	Amount     string `json:"amount"`
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	Year       int                         `json:"year"`
	Month      int                         `json:"month"`
	Income     string                      `json:"income"`
	Currency   string                      `json:"currency"`
	Split      SplitRequest                `json:"split"`
	Categories []CategoryAllocationRequest `json:"categories"`
}

// PreviewAllocationRequest represents the preview request body
type PreviewAllocationRequest struct {
	Income string       `json:"income"`
	Split  SplitRequest `json:"split"`
}

// AllocationResponse is the money amounts for each group
type AllocationResponse struct {
	Needs   string `json:"needs"`
	Wants   string `json:"wants"`
	Savings string `json:"savings"`
	Total   string `json:"total"`
}

func toAllocationResponse(a domain.Allocation) AllocationResponse {
	return AllocationResponse{
		Needs:   a.Needs.StringFixed(2),
		Wants:   a.Wants.StringFixed(2),
		Savings: a.Savings.StringFixed(2),
		Total:   a.Total().StringFixed(2),
	}
}

// RebalanceRequest represents the rebalance request body
type RebalanceRequest struct {
	Split SplitRequest `json:"split"`
	Field string       `json:"field"`
	Value string       `json:"value"`
}

// BudgetLineResponse is one category line of the rollup
type BudgetLineResponse struct {
	CategoryID   int32  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Allocated    string `json:"allocated"`
	Spent        string `json:"spent"`
	Remaining    string `json:"remaining"`
	Unbudgeted   bool   `json:"unbudgeted"`
}

// RollupResponse is the budget-vs-actual summary for a month
type RollupResponse struct {
	Year           int                  `json:"year"`
	Month          int                  `json:"month"`
	Budget         *BudgetResponse      `json:"budget"`
	Currency       string               `json:"currency,omitempty"`
	Lines          []BudgetLineResponse `json:"lines"`
	TotalAllocated string               `json:"totalAllocated"`
	TotalSpent     string               `json:"totalSpent"`
	Remaining      string               `json:"remaining"`
}

func toRollupResponse(rollup *domain.BudgetRollup) RollupResponse {
	resp := RollupResponse{
		Year:           rollup.Year,
		Month:          rollup.Month,
		Lines:          make([]BudgetLineResponse, 0, len(rollup.Lines)),
		TotalAllocated: rollup.TotalAllocated.StringFixed(2),
		TotalSpent:     rollup.TotalSpent.StringFixed(2),
		Remaining:      rollup.Remaining.StringFixed(2),
	}
	if rollup.Budget != nil {
		budget := toBudgetResponse(rollup.Budget)
		resp.Budget = &budget
		resp.Currency = rollup.Budget.Currency
	}
	for _, line := range rollup.Lines {
		resp.Lines = append(resp.Lines, BudgetLineResponse{
			CategoryID:   line.CategoryID,
			CategoryName: line.CategoryName,
			Allocated:    line.Allocated.StringFixed(2),
			Spent:        line.Spent.StringFixed(2),
			Remaining:    line.Remaining.StringFixed(2),
			Unbudgeted:   line.Unbudgeted,
		})
	}
	return resp
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	income, err := decimal.NewFromString(req.Income)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "income", Message: "Must be a decimal number"},
		})
	}

	split, verrs := req.Split.toDomain()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	categories := make([]service.CategoryAllocationInput, 0, len(req.Categories))
	for i, row := range req.Categories {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categories[" + strconv.Itoa(i) + "].amount", Message: "Must be a decimal number"},
			})
		}
		categories = append(categories, service.CategoryAllocationInput{
			CategoryID: row.CategoryID,
			Group:      domain.AllocationGroup(row.Group),
			Amount:     amount,
		})
	}

	budget, err := h.budgetService.CreateBudget(userID, service.CreateBudgetInput{
		Year:       req.Year,
		Month:      req.Month,
		Income:     income,
		Currency:   req.Currency,
		Split:      split,
		Categories: categories,
	})
	if err != nil {
		var partial *domain.BudgetPartialError
		switch {
		case errors.As(err, &partial):
			log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", partial.BudgetID).
				Msg("Budget created without allocation rows")
			return NewPartialWriteError(c, partial.BudgetID, "Budget was created but its allocations failed to save")
		case errors.Is(err, domain.ErrBudgetExists):
			return NewConflictError(c, "A budget already exists for this month")
		case errors.Is(err, domain.ErrInvalidInput):
			return budgetValidationError(c, err)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)

	budgets, err := h.budgetService.GetBudgets(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get budgets")
		return NewInternalError(c, "Failed to get budgets")
	}

	responses := make([]BudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		responses = append(responses, toBudgetResponse(budget))
	}

	return c.JSON(http.StatusOK, responses)
}

// GetRollup handles GET /api/v1/budgets/:year/:month
// By default a missing budget yields an empty rollup; ?strict=true turns it
// into a 404
func (h *BudgetHandler) GetRollup(c echo.Context) error {
	userID := middleware.GetUserID(c)

	year, month, verrs := parsePeriodParams(c)
	if verrs != nil {
		return NewValidationError(c, "Invalid period", verrs)
	}

	var rollup *domain.BudgetRollup
	var err error
	if queryFlag(c, "strict") {
		rollup, err = h.budgetService.RollupStrict(userID, year, month)
	} else {
		rollup, err = h.budgetService.Rollup(userID, year, month)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBudgetNotFound):
			return NewNotFoundError(c, "No budget exists for this month")
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).
			Int("year", year).Int("month", month).Msg("Failed to build rollup")
		return NewInternalError(c, "Failed to build rollup")
	}

	return c.JSON(http.StatusOK, toRollupResponse(rollup))
}

// PreviewAllocation handles POST /api/v1/budgets/preview
// Computes the money split without persisting anything
func (h *BudgetHandler) PreviewAllocation(c echo.Context) error {
	var req PreviewAllocationRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	income, err := decimal.NewFromString(req.Income)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "income", Message: "Must be a decimal number"},
		})
	}

	split, verrs := req.Split.toDomain()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	allocation, err := h.budgetService.PreviewAllocation(income, split)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return budgetValidationError(c, err)
		}
		return NewInternalError(c, "Failed to compute allocation")
	}

	return c.JSON(http.StatusOK, toAllocationResponse(allocation))
}

// Rebalance handles POST /api/v1/budgets/rebalance
// Pins one group and redistributes the other two
func (h *BudgetHandler) Rebalance(c echo.Context) error {
	var req RebalanceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	split, verrs := req.Split.toDomain()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "value", Message: "Must be a decimal number"},
		})
	}

	rebalanced, err := h.budgetService.Rebalance(split, domain.SplitField(req.Field), value)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return budgetValidationError(c, err)
		}
		return NewInternalError(c, "Failed to rebalance split")
	}

	return c.JSON(http.StatusOK, toSplitResponse(rebalanced))
}

// parsePeriodParams parses the :year/:month path parameters
func parsePeriodParams(c echo.Context) (int, int, []ValidationError) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, []ValidationError{{Field: "year", Message: "Must be an integer"}}
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, []ValidationError{{Field: "month", Message: "Must be an integer"}}
	}
	return year, month, nil
}

// budgetValidationError maps a domain validation error to a response,
// surfacing the field name when the error carries one
func budgetValidationError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: verr.Field, Message: verr.Constraint},
		})
	}
	return NewValidationError(c, err.Error(), nil)
}
