package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Uncategorized is the synthetic bucket for transactions without a category
const (
	UncategorizedID   int32  = 0
	UncategorizedName string = "Uncategorized"
)

// Period identifies a calendar month
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Validate checks that the period is a plausible calendar month
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return NewValidationError("month", "must be between 1 and 12")
	}
	if p.Year < MinBudgetYear || p.Year > MaxBudgetYear {
		return NewValidationError("year", "out of range")
	}
	return nil
}

// Contains reports whether t falls within the period's calendar month
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// PeriodOf returns the period a date falls in
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// CategorySpend is one row of aggregated spending for a period
type CategorySpend struct {
	CategoryID       int32           `json:"categoryId"`
	CategoryName     string          `json:"categoryName"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	TransactionCount int             `json:"transactionCount"`
	// PercentOfTotal is totalSpent / sum(totalSpent) * 100; zero for every
	// row when the overall total is zero
	PercentOfTotal decimal.Decimal `json:"percentOfTotal"`
}

// SpendOptions controls which transactions the aggregator considers
type SpendOptions struct {
	IncludeIncome bool
}

// AggregateSpend groups the period's transactions by category and totals
// them. Transactions with no or an unknown category land in the
// Uncategorized bucket. Output is ordered by total descending, name
// ascending on ties.
func AggregateSpend(transactions []*Transaction, categories []*Category, period Period, opts SpendOptions) ([]CategorySpend, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	names := make(map[int32]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	buckets := make(map[int32]*CategorySpend)
	for _, t := range transactions {
		if !period.Contains(t.Date) {
			continue
		}
		if t.Type == TransactionTypeIncome && !opts.IncludeIncome {
			continue
		}

		id := UncategorizedID
		name := UncategorizedName
		if t.CategoryID != nil {
			if n, known := names[*t.CategoryID]; known {
				id = *t.CategoryID
				name = n
			}
		}

		b, ok := buckets[id]
		if !ok {
			b = &CategorySpend{CategoryID: id, CategoryName: name, TotalSpent: decimal.Zero}
			buckets[id] = b
		}
		b.TotalSpent = b.TotalSpent.Add(t.Amount)
		b.TransactionCount++
	}

	result := make([]CategorySpend, 0, len(buckets))
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.TotalSpent)
		result = append(result, *b)
	}

	for i := range result {
		if total.IsZero() {
			result[i].PercentOfTotal = decimal.Zero
		} else {
			result[i].PercentOfTotal = result[i].TotalSpent.Div(total).Mul(hundred)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].TotalSpent.Equal(result[j].TotalSpent) {
			return result[i].TotalSpent.GreaterThan(result[j].TotalSpent)
		}
		return result[i].CategoryName < result[j].CategoryName
	})

	return result, nil
}
