package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/websocket"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	accountRepo     domain.AccountRepository
	reports         *ReportService
	alerts          *AlertService
	events          websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	accountRepo domain.AccountRepository,
	reports *ReportService,
	alerts *AlertService,
	events websocket.EventPublisher,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		accountRepo:     accountRepo,
		reports:         reports,
		alerts:          alerts,
		events:          events,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	CategoryID  *int32
	AccountID   *int32
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Date        *time.Time
	Description string
}

// CreateTransaction records a new transaction with validation. On success it
// pushes a live event, drops cached reports for the month and runs the
// overspend check.
func (s *TransactionService) CreateTransaction(userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}

	description := strings.TrimSpace(input.Description)
	if len(description) > domain.MaxDescriptionLength {
		return nil, domain.NewValidationError("description", "exceeds maximum length")
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetForUser(userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.AccountID != nil {
		if _, err := s.accountRepo.GetByID(userID, *input.AccountID); err != nil {
			return nil, err
		}
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = *input.Date
	}

	transaction, err := s.transactionRepo.Create(&domain.Transaction{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Date:        date,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(userID, websocket.TransactionCreated(transaction))
	s.reports.InvalidateReports(userID, domain.PeriodOf(date))
	s.alerts.TransactionRecorded(transaction)

	return transaction, nil
}

// GetTransactions retrieves transactions for a user with filters and
// pagination, clamping page inputs to sane bounds
func (s *TransactionService) GetTransactions(userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	if filters.Type != nil && !filters.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}

	return s.transactionRepo.GetByUser(userID, filters)
}

// GetTransactionByID retrieves a transaction by ID
func (s *TransactionService) GetTransactionByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}
