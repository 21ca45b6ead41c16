package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/middleware"
	"github.com/bajeti/bajeti-backend/internal/service"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Archived  bool   `json:"archived"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Type:      string(account.Type),
		Balance:   account.Balance.StringFixed(2),
		Currency:  account.Currency,
		Archived:  account.DeletedAt != nil,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name string `json:"name"`
}

// UpdateBalanceRequest represents the update balance request body
type UpdateBalanceRequest struct {
	Balance string `json:"balance"`
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	includeArchived := queryFlag(c, "includeArchived")

	accounts, err := h.accountService.GetAccounts(userID, includeArchived)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, toAccountResponse(account))
	}

	return c.JSON(http.StatusOK, responses)
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance := decimal.Zero
	if req.Balance != "" {
		var err error
		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "balance", Message: "Must be a decimal number"},
			})
		}
	}

	account, err := h.accountService.CreateAccount(userID, service.CreateAccountInput{
		Name:     req.Name,
		Type:     domain.AccountType(req.Type),
		Balance:  balance,
		Currency: req.Currency,
	})
	if err != nil {
		if verrs := accountValidationErrors(err); verrs != nil {
			return NewValidationError(c, "Validation failed", verrs)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.UpdateAccountName(userID, id, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if verrs := accountValidationErrors(err); verrs != nil {
			return NewValidationError(c, "Validation failed", verrs)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateBalance handles PATCH /api/v1/accounts/:id/balance
func (h *AccountHandler) UpdateBalance(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateBalanceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "balance", Message: "Must be a decimal number"},
		})
	}

	account, err := h.accountService.UpdateBalance(userID, id, balance)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("account_id", id).Msg("Failed to update balance")
		return NewInternalError(c, "Failed to update balance")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// ArchiveAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) ArchiveAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.ArchiveAccount(userID, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("account_id", id).Msg("Failed to archive account")
		return NewInternalError(c, "Failed to archive account")
	}

	return c.NoContent(http.StatusNoContent)
}

func accountValidationErrors(err error) []ValidationError {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return []ValidationError{{Field: "name", Message: "Name is required"}}
	case errors.Is(err, domain.ErrNameTooLong):
		return []ValidationError{{Field: "name", Message: "Name is too long"}}
	case errors.Is(err, domain.ErrInvalidAccountType):
		return []ValidationError{{Field: "type", Message: "Must be one of: bank, mobile, loan, cash"}}
	case errors.Is(err, domain.ErrInvalidCurrency):
		return []ValidationError{{Field: "currency", Message: "Must be a 3-letter ISO 4217 code"}}
	}
	return nil
}
