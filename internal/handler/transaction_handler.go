package handler

import (
	"errors"
	"io"
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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	receiptService     *service.ReceiptService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, receiptService *service.ReceiptService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		receiptService:     receiptService,
	}
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          int32  `json:"id"`
	CategoryID  *int32 `json:"categoryId"`
	AccountID   *int32 `json:"accountId"`
	Type        string `json:"type"`
	IsIncome    bool   `json:"isIncome"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	HasReceipt  bool   `json:"hasReceipt"`
	CreatedAt   string `json:"createdAt"`
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		AccountID:   tx.AccountID,
		Type:        string(tx.Type),
		IsIncome:    tx.Type.IsIncome(),
		Amount:      tx.Amount.StringFixed(2),
		Date:        tx.Date.Format("2006-01-02"),
		Description: tx.Description,
		HasReceipt:  tx.ReceiptKey != nil,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

// TransactionListResponse is the paginated transaction list
type TransactionListResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	CategoryID  *int32 `json:"categoryId"`
	AccountID   *int32 `json:"accountId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ReceiptResponse carries the presigned receipt URL
type ReceiptResponse struct {
	URL string `json:"url"`
}

// GetTransactions handles GET /api/v1/transactions
// Supports filters: categoryId, accountId, type, startDate, endDate, page, pageSize
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters, verrs := parseTransactionFilters(c)
	if verrs != nil {
		return NewValidationError(c, "Invalid filters", verrs)
	}

	result, err := h.transactionService.GetTransactions(userID, filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Must be income or expense"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	data := make([]TransactionResponse, 0, len(result.Data))
	for _, tx := range result.Data {
		data = append(data, toTransactionResponse(tx))
	}

	return c.JSON(http.StatusOK, TransactionListResponse{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be a decimal number"},
		})
	}

	var date *time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	tx, err := h.transactionService.CreateTransaction(userID, service.CreateTransactionInput{
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Must be positive"},
			})
		case errors.Is(err, domain.ErrInvalidTransactionType):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Must be income or expense"},
			})
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categoryId", Message: "Category not found"},
			})
		case errors.Is(err, domain.ErrAccountNotFound):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "accountId", Message: "Account not found"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// AttachReceipt handles POST /api/v1/transactions/:id/receipt
// Accepts a multipart form with an "image" file field
func (h *TransactionHandler) AttachReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if !h.receiptService.IsEnabled() {
		return NewValidationError(c, "Receipt storage is not configured", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "image", Message: "Image file is required"},
		})
	}
	if fileHeader.Size > service.MaxReceiptSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "image", Message: "File too large. Maximum size is 5MB"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewInternalError(c, "Failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
	if err != nil {
		return NewInternalError(c, "Failed to read upload")
	}

	url, err := h.receiptService.AttachReceipt(c.Request().Context(), userID, id, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
			return NewNotFoundError(c, "Transaction not found")
		case errors.Is(err, service.ErrReceiptTooLarge),
			errors.Is(err, service.ErrInvalidReceiptFormat),
			errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "image", Message: err.Error()},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	return c.JSON(http.StatusOK, ReceiptResponse{URL: url})
}

// GetReceipt handles GET /api/v1/transactions/:id/receipt
func (h *TransactionHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if !h.receiptService.IsEnabled() {
		return NewNotFoundError(c, "Receipt storage is not configured")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	url, err := h.receiptService.GetReceiptURL(c.Request().Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
			return NewNotFoundError(c, "Transaction not found")
		case errors.Is(err, domain.ErrReceiptNotFound):
			return NewNotFoundError(c, "Transaction has no receipt")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to get receipt")
		return NewInternalError(c, "Failed to get receipt")
	}

	return c.JSON(http.StatusOK, ReceiptResponse{URL: url})
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, []ValidationError) {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("categoryId"); v != "" {
		id, err := parseQueryID(v)
		if err != nil {
			return nil, []ValidationError{{Field: "categoryId", Message: "Must be a positive integer"}}
		}
		filters.CategoryID = &id
	}
	if v := c.QueryParam("accountId"); v != "" {
		id, err := parseQueryID(v)
		if err != nil {
			return nil, []ValidationError{{Field: "accountId", Message: "Must be a positive integer"}}
		}
		filters.AccountID = &id
	}
	if v := c.QueryParam("type"); v != "" {
		t := domain.TransactionType(v)
		filters.Type = &t
	}
	if v := c.QueryParam("startDate"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, []ValidationError{{Field: "startDate", Message: "Must be in YYYY-MM-DD format"}}
		}
		filters.StartDate = &parsed
	}
	if v := c.QueryParam("endDate"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, []ValidationError{{Field: "endDate", Message: "Must be in YYYY-MM-DD format"}}
		}
		filters.EndDate = &parsed
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := parseQueryID(v)
		if err != nil {
			return nil, []ValidationError{{Field: "page", Message: "Must be a positive integer"}}
		}
		filters.Page = page
	}
	if v := c.QueryParam("pageSize"); v != "" {
		size, err := parseQueryID(v)
		if err != nil {
			return nil, []ValidationError{{Field: "pageSize", Message: "Must be a positive integer"}}
		}
		filters.PageSize = size
	}

	return filters, nil
}

// parseQueryID parses a positive int32 query value
func parseQueryID(v string) (int32, error) {
	id, err := strconv.ParseInt(v, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return int32(id), nil
}
