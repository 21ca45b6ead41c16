package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// IsIncome exists for the legacy API shape that exposed a boolean next to
// the type string; internally the type is the single source of truth.
func (t TransactionType) IsIncome() bool {
	return t == TransactionTypeIncome
}

// Transaction records a single income or expense. Amount is always the
// positive magnitude; the cash-flow sign comes from Type.
type Transaction struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	CategoryID  *int32          `json:"categoryId,omitempty"`
	AccountID   *int32          `json:"accountId,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	ReceiptKey  *string         `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Effect returns the signed cash-flow effect of the transaction
func (t *Transaction) Effect() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

type TransactionFilters struct {
	CategoryID *int32
	AccountID  *int32
	Type       *TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID uuid.UUID, id int32) (*Transaction, error)
	GetByUser(userID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	// GetByPeriod returns all transactions dated within the given month
	GetByPeriod(userID uuid.UUID, year, month int) ([]*Transaction, error)
	SetReceiptKey(userID uuid.UUID, id int32, key *string) error
}
