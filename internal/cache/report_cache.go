// Package cache provides best-effort caching of computed spending reports.
// A cache error is treated as a miss and never fails the request.
package cache

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

// ReportCache caches spending reports keyed by user and period
type ReportCache interface {
	// Get returns the cached report, or ok=false on a miss
	Get(userID uuid.UUID, period domain.Period, includeIncome bool) (report []domain.CategorySpend, ok bool)
	// Set stores a report for the period
	Set(userID uuid.UUID, period domain.Period, includeIncome bool, report []domain.CategorySpend)
	// InvalidatePeriod drops cached reports for the period (both income modes)
	InvalidatePeriod(userID uuid.UUID, period domain.Period)
}

// ReportKey builds the cache key for a report
func ReportKey(userID uuid.UUID, period domain.Period, includeIncome bool) string {
	mode := "expenses"
	if includeIncome {
		mode = "all"
	}
	return fmt.Sprintf("report:spending:%s:%04d-%02d:%s", userID, period.Year, period.Month, mode)
}

// NoopCache caches nothing. Used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(uuid.UUID, domain.Period, bool) ([]domain.CategorySpend, bool) {
	return nil, false
}
func (NoopCache) Set(uuid.UUID, domain.Period, bool, []domain.CategorySpend) {}
func (NoopCache) InvalidatePeriod(uuid.UUID, domain.Period)                  {}
