package service

import (
	"github.com/google/uuid"

	"github.com/bajeti/bajeti-backend/internal/cache"
	"github.com/bajeti/bajeti-backend/internal/domain"
)

// ReportService computes per-category spending reports with a cache in front
type ReportService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	cache           cache.ReportCache
}

// NewReportService creates a new ReportService
func NewReportService(
	transactionRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	reportCache cache.ReportCache,
) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		cache:           reportCache,
	}
}

// GetSpendingReport aggregates the month's transactions by category
func (s *ReportService) GetSpendingReport(userID uuid.UUID, year, month int, includeIncome bool) ([]domain.CategorySpend, error) {
	period := domain.Period{Year: year, Month: month}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	if report, ok := s.cache.Get(userID, period, includeIncome); ok {
		return report, nil
	}

	transactions, err := s.transactionRepo.GetByPeriod(userID, year, month)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetAllForUser(userID)
	if err != nil {
		return nil, err
	}

	report, err := domain.AggregateSpend(transactions, categories, period, domain.SpendOptions{IncludeIncome: includeIncome})
	if err != nil {
		return nil, err
	}

	s.cache.Set(userID, period, includeIncome, report)

	return report, nil
}

// InvalidateReports drops cached reports for the period after a write
func (s *ReportService) InvalidateReports(userID uuid.UUID, period domain.Period) {
	s.cache.InvalidatePeriod(userID, period)
}
