package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/websocket"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo domain.AccountRepository
	events      websocket.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, events websocket.EventPublisher) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		events:      events,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name     string
	Type     domain.AccountType
	Balance  decimal.Decimal
	Currency string
}

// CreateAccount creates a new account with validation
func (s *AccountService) CreateAccount(userID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidAccountType
	}
	if !domain.ValidCurrencyCode(input.Currency) {
		return nil, domain.ErrInvalidCurrency
	}

	return s.accountRepo.Create(&domain.Account{
		UserID:   userID,
		Name:     name,
		Type:     input.Type,
		Balance:  input.Balance,
		Currency: input.Currency,
	})
}

// GetAccounts retrieves accounts for a user
func (s *AccountService) GetAccounts(userID uuid.UUID, includeArchived bool) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByUser(userID, includeArchived)
}

// GetAccountByID retrieves a single account
func (s *AccountService) GetAccountByID(userID uuid.UUID, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(userID, id)
}

// UpdateAccountName renames an account
func (s *AccountService) UpdateAccountName(userID uuid.UUID, id int32, name string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	return s.accountRepo.UpdateName(userID, id, name)
}

// UpdateBalance sets a new balance snapshot for an account
func (s *AccountService) UpdateBalance(userID uuid.UUID, id int32, balance decimal.Decimal) (*domain.Account, error) {
	account, err := s.accountRepo.UpdateBalance(userID, id, balance)
	if err != nil {
		return nil, err
	}

	s.events.Publish(userID, websocket.AccountUpdated(account))

	return account, nil
}

// ArchiveAccount soft deletes an account; its transactions are kept
func (s *AccountService) ArchiveAccount(userID uuid.UUID, id int32) error {
	return s.accountRepo.SoftDelete(userID, id)
}
