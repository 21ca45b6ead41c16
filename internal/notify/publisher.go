// Package notify publishes overspend alerts to a message broker for
// downstream delivery (email, push). Publishing is best-effort: a broker
// failure is logged and never fails the request that triggered it.
package notify

import (
	"github.com/bajeti/bajeti-backend/internal/domain"
)

// AlertPublisher publishes overspend alerts
type AlertPublisher interface {
	PublishOverspend(alert domain.OverspendAlert) error
	Close() error
}

// NoopPublisher discards alerts. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOverspend(domain.OverspendAlert) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
