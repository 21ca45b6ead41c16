package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationGroup is the budget bucket an allocation row belongs to
type AllocationGroup string

const (
	GroupNeeds   AllocationGroup = "needs"
	GroupWants   AllocationGroup = "wants"
	GroupSavings AllocationGroup = "savings"
)

// Valid reports whether g is a known allocation group
func (g AllocationGroup) Valid() bool {
	return g == GroupNeeds || g == GroupWants || g == GroupSavings
}

// Budget is a monthly plan: an income and its needs/wants/savings split.
// At most one budget exists per (user, year, month).
type Budget struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Income    decimal.Decimal `json:"income"`
	Currency  string          `json:"currency"`
	Split     Split           `json:"split"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Period returns the budget's calendar month
func (b *Budget) Period() Period {
	return Period{Year: b.Year, Month: b.Month}
}

// BudgetCategory is one allocation row under a budget. CategoryID is nil for
// the group-level rows that carry the split amounts themselves.
type BudgetCategory struct {
	ID         int32           `json:"id"`
	BudgetID   int32           `json:"budgetId"`
	CategoryID *int32          `json:"categoryId,omitempty"`
	Group      AllocationGroup `json:"group"`
	Amount     decimal.Decimal `json:"amount"`
}

type BudgetRepository interface {
	// Create inserts the budget row; ErrBudgetExists when the (user, year,
	// month) slot is already taken
	Create(budget *Budget) (*Budget, error)
	// CreateCategories inserts allocation rows for an existing budget.
	// Kept separate from Create so callers can tell which write failed.
	CreateCategories(budgetID int32, rows []*BudgetCategory) error
	GetByPeriod(userID uuid.UUID, year, month int) (*Budget, error)
	GetAllByUser(userID uuid.UUID) ([]*Budget, error)
	GetCategories(budgetID int32) ([]*BudgetCategory, error)
}

// BudgetLine pairs one category allocation with its actual spend
type BudgetLine struct {
	CategoryID   int32           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Allocated    decimal.Decimal `json:"allocated"`
	Spent        decimal.Decimal `json:"spent"`
	// Remaining is allocated - spent; negative means overspend
	Remaining decimal.Decimal `json:"remaining"`
	// Unbudgeted marks spend in a category with no allocation row
	Unbudgeted bool `json:"unbudgeted"`
}

// BudgetRollup is the budget-vs-actual summary for one month. Budget is nil
// when no budget exists for the period; that is a valid state, not an error.
type BudgetRollup struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Budget         *Budget         `json:"budget"`
	Lines          []BudgetLine    `json:"lines"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	Remaining      decimal.Decimal `json:"remaining"`
}

// EmptyRollup returns the zeroed rollup used when no budget exists yet
func EmptyRollup(period Period) *BudgetRollup {
	return &BudgetRollup{
		Year:           period.Year,
		Month:          period.Month,
		Lines:          []BudgetLine{},
		TotalAllocated: decimal.Zero,
		TotalSpent:     decimal.Zero,
		Remaining:      decimal.Zero,
	}
}

// BuildRollup joins a budget's category allocations with aggregated spend.
// Allocations without spend show spent 0; spend without an allocation
// becomes an unbudgeted line. The allocated total is the sum of the
// group-level rows (nil category); per-category rows subdivide a group's
// amount and never add to it. A budget persisted without group rows falls
// back to summing its category rows.
func BuildRollup(budget *Budget, allocations []*BudgetCategory, spend []CategorySpend, categories []*Category) *BudgetRollup {
	rollup := EmptyRollup(budget.Period())
	rollup.Budget = budget

	nameByID := make(map[int32]string, len(categories))
	for _, c := range categories {
		nameByID[c.ID] = c.Name
	}

	spentBy := make(map[int32]CategorySpend, len(spend))
	for _, s := range spend {
		spentBy[s.CategoryID] = s
		rollup.TotalSpent = rollup.TotalSpent.Add(s.TotalSpent)
	}

	hasGroupRows := false
	categoryTotal := decimal.Zero
	seen := make(map[int32]bool)
	for _, a := range allocations {
		if a.CategoryID == nil {
			hasGroupRows = true
			rollup.TotalAllocated = rollup.TotalAllocated.Add(a.Amount)
			continue
		}
		categoryTotal = categoryTotal.Add(a.Amount)
		line := BudgetLine{
			CategoryID:   *a.CategoryID,
			CategoryName: nameByID[*a.CategoryID],
			Allocated:    a.Amount,
			Spent:        decimal.Zero,
		}
		if s, ok := spentBy[*a.CategoryID]; ok {
			if line.CategoryName == "" {
				line.CategoryName = s.CategoryName
			}
			line.Spent = s.TotalSpent
		}
		line.Remaining = line.Allocated.Sub(line.Spent)
		rollup.Lines = append(rollup.Lines, line)
		seen[*a.CategoryID] = true
	}
	if !hasGroupRows {
		rollup.TotalAllocated = categoryTotal
	}

	for _, s := range spend {
		if seen[s.CategoryID] {
			continue
		}
		rollup.Lines = append(rollup.Lines, BudgetLine{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			Allocated:    decimal.Zero,
			Spent:        s.TotalSpent,
			Remaining:    s.TotalSpent.Neg(),
			Unbudgeted:   true,
		})
	}

	rollup.Remaining = rollup.TotalAllocated.Sub(rollup.TotalSpent)
	return rollup
}

// OverspendAlert describes a category whose spend exceeded its allocation
type OverspendAlert struct {
	UserID       uuid.UUID       `json:"userId"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	CategoryID   int32           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Currency     string          `json:"currency"`
	Allocated    decimal.Decimal `json:"allocated"`
	Spent        decimal.Decimal `json:"spent"`
}
