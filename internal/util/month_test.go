package util

import (
	"testing"
	"time"
)

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2026, 2)
	if start != time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected start: %v", start)
	}
	if end != time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected end: %v", end)
	}
}

func TestMonthBounds_YearWrap(t *testing.T) {
	_, end := MonthBounds(2025, 12)
	if end != time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected end: %v", end)
	}
}
