package notify

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

func TestOverspendRoutingKey(t *testing.T) {
	userID := uuid.MustParse("3f0c8b2e-5a1d-4f6e-9c7b-2d8e4a6f1b3c")
	alert := domain.OverspendAlert{UserID: userID}

	got := OverspendRoutingKey(alert)
	want := "overspend.3f0c8b2e-5a1d-4f6e-9c7b-2d8e4a6f1b3c"
	if got != want {
		t.Errorf("Expected routing key %q, got %q", want, got)
	}
}

func TestMarshalOverspend(t *testing.T) {
	alert := domain.OverspendAlert{
		UserID:       uuid.New(),
		Year:         2025,
		Month:        3,
		CategoryID:   7,
		CategoryName: "Groceries",
		Currency:     "TZS",
		Allocated:    decimal.NewFromInt(500),
		Spent:        decimal.NewFromInt(650),
	}

	body, err := MarshalOverspend(alert)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}

	if decoded["allocated"] != "500.00" {
		t.Errorf("Expected allocated 500.00, got %v", decoded["allocated"])
	}
	if decoded["spent"] != "650.00" {
		t.Errorf("Expected spent 650.00, got %v", decoded["spent"])
	}
	if decoded["categoryName"] != "Groceries" {
		t.Errorf("Expected category Groceries, got %v", decoded["categoryName"])
	}
	if decoded["occurredAt"] == nil {
		t.Error("Expected occurredAt to be set")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p AlertPublisher = NoopPublisher{}
	if err := p.PublishOverspend(domain.OverspendAlert{}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
