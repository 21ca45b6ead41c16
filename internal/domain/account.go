package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank   AccountType = "bank"
	AccountTypeMobile AccountType = "mobile"
	AccountTypeLoan   AccountType = "loan"
	AccountTypeCash   AccountType = "cash"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeMobile, AccountTypeLoan, AccountTypeCash:
		return true
	}
	return false
}

// Account is a wallet snapshot. Balance is maintained by the user, not
// derived from transaction history.
type Account struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *time.Time      `json:"deletedAt,omitempty"`
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(userID uuid.UUID, id int32) (*Account, error)
	GetAllByUser(userID uuid.UUID, includeArchived bool) ([]*Account, error)
	UpdateName(userID uuid.UUID, id int32, name string) (*Account, error)
	UpdateBalance(userID uuid.UUID, id int32, balance decimal.Decimal) (*Account, error)
	SoftDelete(userID uuid.UUID, id int32) error
}
