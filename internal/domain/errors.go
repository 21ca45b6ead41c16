package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrUserNotFound           = errors.New("user not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryInUse          = errors.New("category has transactions")
	ErrSystemCategory         = errors.New("system categories cannot be modified")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrBudgetNotFound         = errors.New("budget not found")
	ErrBudgetExists           = errors.New("budget already exists for this month")
	ErrReceiptNotFound        = errors.New("transaction has no receipt")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidCurrency        = errors.New("invalid currency code")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
)

// Validation constants
const (
	MaxAccountNameLength  = 255
	MaxCategoryNameLength = 100
	MaxDescriptionLength  = 500
	MinBudgetYear         = 2000
	MaxBudgetYear         = 2100
)

// ValidationError reports a failed input constraint on one of the pure
// computations. Field names the offending input, Constraint says what was
// violated.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Constraint)
}

// Is makes ValidationError match ErrInvalidInput in errors.Is checks
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a ValidationError for a field and constraint
func NewValidationError(field, constraint string) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint}
}

// BudgetPartialError reports a budget that was created but whose allocation
// rows failed to persist. The budget row exists; callers must surface this
// distinctly from a failed first write.
type BudgetPartialError struct {
	BudgetID int32
	Err      error
}

func (e *BudgetPartialError) Error() string {
	return fmt.Sprintf("budget %d created but allocations failed: %v", e.BudgetID, e.Err)
}

func (e *BudgetPartialError) Unwrap() error {
	return e.Err
}
