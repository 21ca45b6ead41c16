package service

import (
	"github.com/rs/zerolog/log"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/notify"
	"github.com/bajeti/bajeti-backend/internal/websocket"
)

// AlertService turns overspent budget lines into notifications. Everything
// here is best-effort: a failed broker publish is logged, never returned.
type AlertService struct {
	budgets  *BudgetService
	userRepo domain.UserRepository
	events   websocket.EventPublisher
	alerts   notify.AlertPublisher
}

// NewAlertService creates a new AlertService
func NewAlertService(
	budgets *BudgetService,
	userRepo domain.UserRepository,
	events websocket.EventPublisher,
	alerts notify.AlertPublisher,
) *AlertService {
	return &AlertService{
		budgets:  budgets,
		userRepo: userRepo,
		events:   events,
		alerts:   alerts,
	}
}

// TransactionRecorded checks whether the transaction pushed its category
// over its allocation and notifies the user if so
func (s *AlertService) TransactionRecorded(tx *domain.Transaction) {
	if tx.Type != domain.TransactionTypeExpense || tx.CategoryID == nil {
		return
	}

	period := domain.PeriodOf(tx.Date)
	overspent, err := s.budgets.CheckOverspend(tx.UserID, period.Year, period.Month)
	if err != nil {
		log.Warn().Err(err).Str("user_id", tx.UserID.String()).Msg("Overspend check failed")
		return
	}

	for _, alert := range overspent {
		if alert.CategoryID != *tx.CategoryID {
			continue
		}

		s.events.Publish(tx.UserID, websocket.BudgetOverspent(alert))

		if !s.alertsEnabled(tx) {
			continue
		}
		if err := s.alerts.PublishOverspend(alert); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", tx.UserID.String()).
				Int32("category_id", alert.CategoryID).
				Msg("Failed to publish overspend alert")
		}
	}
}

func (s *AlertService) alertsEnabled(tx *domain.Transaction) bool {
	user, err := s.userRepo.GetByID(tx.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", tx.UserID.String()).Msg("Preference lookup failed")
		return false
	}
	return user.Preferences.OverspendAlerts
}
