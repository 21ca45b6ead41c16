package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/websocket"
)

// BudgetService handles budget creation and the monthly budget-vs-actual
// rollup
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
	events          websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
	transactionRepo domain.TransactionRepository,
	events websocket.EventPublisher,
) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		events:          events,
	}
}

// CategoryAllocationInput assigns part of a group's amount to a category
type CategoryAllocationInput struct {
	CategoryID int32
	Group      domain.AllocationGroup
	Amount     decimal.Decimal
}

// CreateBudgetInput holds the input for creating a monthly budget
type CreateBudgetInput struct {
	Year     int
	Month    int
	Income   decimal.Decimal
	Currency string
	Split    domain.Split
	// Categories optionally breaks the group amounts down per category
	Categories []CategoryAllocationInput
}

// CreateBudget validates the input, allocates the income and persists the
// budget with its allocation rows. The budget row and the allocation rows
// are two separate writes; when the second fails the returned error is a
// BudgetPartialError carrying the already-created budget ID.
func (s *BudgetService) CreateBudget(userID uuid.UUID, input CreateBudgetInput) (*domain.Budget, error) {
	period := domain.Period{Year: input.Year, Month: input.Month}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidCurrencyCode(input.Currency) {
		return nil, domain.ErrInvalidCurrency
	}

	allocation, err := input.Split.Allocate(input.Income)
	if err != nil {
		return nil, err
	}

	// Validate category rows up front so a bad row never leaves a partial
	// budget behind
	for _, c := range input.Categories {
		if !c.Group.Valid() {
			return nil, domain.NewValidationError("group", "must be needs, wants or savings")
		}
		if c.Amount.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}
		if _, err := s.categoryRepo.GetForUser(userID, c.CategoryID); err != nil {
			return nil, err
		}
	}

	budget, err := s.budgetRepo.Create(&domain.Budget{
		UserID:   userID,
		Year:     input.Year,
		Month:    input.Month,
		Income:   input.Income,
		Currency: input.Currency,
		Split:    input.Split,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.BudgetCategory, 0, 3+len(input.Categories))
	for _, g := range []struct {
		group  domain.AllocationGroup
		amount decimal.Decimal
	}{
		{domain.GroupNeeds, allocation.Needs},
		{domain.GroupWants, allocation.Wants},
		{domain.GroupSavings, allocation.Savings},
	} {
		rows = append(rows, &domain.BudgetCategory{
			BudgetID: budget.ID,
			Group:    g.group,
			Amount:   g.amount,
		})
	}
	for _, c := range input.Categories {
		categoryID := c.CategoryID
		rows = append(rows, &domain.BudgetCategory{
			BudgetID:   budget.ID,
			CategoryID: &categoryID,
			Group:      c.Group,
			Amount:     c.Amount,
		})
	}

	if err := s.budgetRepo.CreateCategories(budget.ID, rows); err != nil {
		return nil, &domain.BudgetPartialError{BudgetID: budget.ID, Err: err}
	}

	s.events.Publish(userID, websocket.BudgetCreated(budget))

	return budget, nil
}

// GetBudgets returns all budgets for a user
func (s *BudgetService) GetBudgets(userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(userID)
}

// PreviewAllocation applies a split to an income without persisting anything
func (s *BudgetService) PreviewAllocation(income decimal.Decimal, split domain.Split) (domain.Allocation, error) {
	return split.Allocate(income)
}

// Rebalance applies the wizard slider policy to a split
func (s *BudgetService) Rebalance(split domain.Split, field domain.SplitField, value decimal.Decimal) (domain.Split, error) {
	return split.Rebalance(field, value)
}

// Rollup returns the budget-vs-actual summary for a month. A month without
// a budget yields an empty rollup with a nil budget, not an error.
func (s *BudgetService) Rollup(userID uuid.UUID, year, month int) (*domain.BudgetRollup, error) {
	period := domain.Period{Year: year, Month: month}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByPeriod(userID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) || errors.Is(err, domain.ErrNotFound) {
			return domain.EmptyRollup(period), nil
		}
		return nil, err
	}

	return s.buildRollup(userID, budget, period)
}

// RollupStrict is Rollup for callers that treat a missing budget as an error
func (s *BudgetService) RollupStrict(userID uuid.UUID, year, month int) (*domain.BudgetRollup, error) {
	period := domain.Period{Year: year, Month: month}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByPeriod(userID, year, month)
	if err != nil {
		return nil, err
	}

	return s.buildRollup(userID, budget, period)
}

func (s *BudgetService) buildRollup(userID uuid.UUID, budget *domain.Budget, period domain.Period) (*domain.BudgetRollup, error) {
	allocations, err := s.budgetRepo.GetCategories(budget.ID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByPeriod(userID, period.Year, period.Month)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetAllForUser(userID)
	if err != nil {
		return nil, err
	}

	spend, err := domain.AggregateSpend(transactions, categories, period, domain.SpendOptions{})
	if err != nil {
		return nil, err
	}

	return domain.BuildRollup(budget, allocations, spend, categories), nil
}

// CheckOverspend returns an alert for every budgeted category whose spend
// exceeds its allocation in the period. Months without a budget produce no
// alerts.
func (s *BudgetService) CheckOverspend(userID uuid.UUID, year, month int) ([]domain.OverspendAlert, error) {
	rollup, err := s.Rollup(userID, year, month)
	if err != nil {
		return nil, err
	}
	if rollup.Budget == nil {
		return nil, nil
	}

	var alerts []domain.OverspendAlert
	for _, line := range rollup.Lines {
		if line.Unbudgeted || !line.Remaining.IsNegative() {
			continue
		}
		alerts = append(alerts, domain.OverspendAlert{
			UserID:       userID,
			Year:         year,
			Month:        month,
			CategoryID:   line.CategoryID,
			CategoryName: line.CategoryName,
			Currency:     rollup.Budget.Currency,
			Allocated:    line.Allocated,
			Spent:        line.Spent,
		})
	}
	return alerts, nil
}
