package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

// overspendMessage is the wire format of an overspend alert
type overspendMessage struct {
	UserID       string    `json:"userId"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	CategoryID   int32     `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Currency     string    `json:"currency"`
	Allocated    string    `json:"allocated"`
	Spent        string    `json:"spent"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// OverspendRoutingKey returns the routing key for an alert
func OverspendRoutingKey(alert domain.OverspendAlert) string {
	return fmt.Sprintf("overspend.%s", alert.UserID)
}

// MarshalOverspend serializes an alert to its wire format
func MarshalOverspend(alert domain.OverspendAlert) ([]byte, error) {
	return json.Marshal(overspendMessage{
		UserID:       alert.UserID.String(),
		Year:         alert.Year,
		Month:        alert.Month,
		CategoryID:   alert.CategoryID,
		CategoryName: alert.CategoryName,
		Currency:     alert.Currency,
		Allocated:    alert.Allocated.StringFixed(2),
		Spent:        alert.Spent.StringFixed(2),
		OccurredAt:   time.Now().UTC(),
	})
}
