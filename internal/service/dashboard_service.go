package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

// DashboardService assembles the dashboard summary
type DashboardService struct {
	accountRepo domain.AccountRepository
	budgets     *BudgetService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(accountRepo domain.AccountRepository, budgets *BudgetService) *DashboardService {
	return &DashboardService{
		accountRepo: accountRepo,
		budgets:     budgets,
	}
}

// GetSummary returns the current month's rollup together with account
// balances. The two lookups run concurrently.
func (s *DashboardService) GetSummary(userID uuid.UUID) (*domain.DashboardSummary, error) {
	now := time.Now().UTC()
	return s.GetSummaryForMonth(userID, now.Year(), int(now.Month()))
}

// GetSummaryForMonth returns the dashboard summary for a specific month
func (s *DashboardService) GetSummaryForMonth(userID uuid.UUID, year, month int) (*domain.DashboardSummary, error) {
	var (
		rollup   *domain.BudgetRollup
		accounts []*domain.Account
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		rollup, err = s.budgets.Rollup(userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accountRepo.GetAllByUser(userID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	balances := make([]domain.AccountBalance, 0, len(accounts))
	total := decimal.Zero
	for _, a := range accounts {
		balances = append(balances, domain.AccountBalance{
			AccountID: a.ID,
			Name:      a.Name,
			Type:      a.Type,
			Balance:   a.Balance,
			Currency:  a.Currency,
		})
		// Loan balances are amounts owed and count against net worth
		if a.Type == domain.AccountTypeLoan {
			total = total.Sub(a.Balance)
		} else {
			total = total.Add(a.Balance)
		}
	}

	return &domain.DashboardSummary{
		Rollup:       rollup,
		Accounts:     balances,
		TotalBalance: total,
	}, nil
}
