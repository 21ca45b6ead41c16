package domain

import "github.com/shopspring/decimal"

// SplitField identifies one slider of the needs/wants/savings split
type SplitField string

const (
	SplitNeeds   SplitField = "needs"
	SplitWants   SplitField = "wants"
	SplitSavings SplitField = "savings"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// splitEpsilon is the tolerance on the percentage sum, to absorb
	// rounding from client-side sliders
	splitEpsilon = decimal.NewFromFloat(0.01)
)

// Split is the needs/wants/savings percentage triple of a budget.
// A valid split has every field in [0,100] and a sum of 100 within epsilon.
type Split struct {
	Needs   decimal.Decimal `json:"needs"`
	Wants   decimal.Decimal `json:"wants"`
	Savings decimal.Decimal `json:"savings"`
}

// Sum returns needs + wants + savings
func (s Split) Sum() decimal.Decimal {
	return s.Needs.Add(s.Wants).Add(s.Savings)
}

// Validate checks the split invariants and returns a ValidationError naming
// the first violated constraint.
func (s Split) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"needs", s.Needs},
		{"wants", s.Wants},
		{"savings", s.Savings},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return NewValidationError(f.name, "must not be negative")
		}
		if f.value.GreaterThan(hundred) {
			return NewValidationError(f.name, "must not exceed 100")
		}
	}
	if s.Sum().Sub(hundred).Abs().GreaterThan(splitEpsilon) {
		return NewValidationError("split", "percentages must sum to 100")
	}
	return nil
}

// Allocation is the result of applying a split to an income amount
type Allocation struct {
	Needs   decimal.Decimal `json:"needs"`
	Wants   decimal.Decimal `json:"wants"`
	Savings decimal.Decimal `json:"savings"`
}

// Total returns the sum of the three sub-amounts
func (a Allocation) Total() decimal.Decimal {
	return a.Needs.Add(a.Wants).Add(a.Savings)
}

// Amount returns the sub-amount for a split field
func (a Allocation) Amount(field SplitField) decimal.Decimal {
	switch field {
	case SplitNeeds:
		return a.Needs
	case SplitWants:
		return a.Wants
	}
	return a.Savings
}

// Allocate computes the three sub-amounts for an income. Income must be
// positive and the split valid. Decimal arithmetic keeps the sub-amounts
// summing back to the income within a minor unit.
func (s Split) Allocate(income decimal.Decimal) (Allocation, error) {
	if income.LessThanOrEqual(decimal.Zero) {
		return Allocation{}, NewValidationError("income", "must be positive")
	}
	if err := s.Validate(); err != nil {
		return Allocation{}, err
	}
	return Allocation{
		Needs:   income.Mul(s.Needs).Div(hundred),
		Wants:   income.Mul(s.Wants).Div(hundred),
		Savings: income.Mul(s.Savings).Div(hundred),
	}, nil
}

// Rebalance applies the wizard slider policy: the changed field takes the
// given value and the remaining 100-value is split equally between the two
// untouched fields.
func (s Split) Rebalance(field SplitField, value decimal.Decimal) (Split, error) {
	if field != SplitNeeds && field != SplitWants && field != SplitSavings {
		return Split{}, NewValidationError("field", "must be needs, wants or savings")
	}
	if value.IsNegative() {
		return Split{}, NewValidationError(string(field), "must not be negative")
	}
	if value.GreaterThan(hundred) {
		return Split{}, NewValidationError(string(field), "must not exceed 100")
	}

	rest := hundred.Sub(value).Div(two)
	switch field {
	case SplitNeeds:
		return Split{Needs: value, Wants: rest, Savings: rest}, nil
	case SplitWants:
		return Split{Needs: rest, Wants: value, Savings: rest}, nil
	default:
		return Split{Needs: rest, Wants: rest, Savings: value}, nil
	}
}
