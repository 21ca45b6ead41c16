package domain

import (
	"time"

	"github.com/google/uuid"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Preferences holds per-user settings. Currency is an ISO 4217 code and is
// only a display default; money-bearing entities carry their own currency.
type Preferences struct {
	Currency        string `json:"currency"`
	Language        string `json:"language"`
	Theme           Theme  `json:"theme"`
	OverspendAlerts bool   `json:"overspendAlerts"`
}

// DefaultPreferences returns the preferences assigned on first sign-in
func DefaultPreferences() Preferences {
	return Preferences{
		Language:        "en",
		Theme:           ThemeSystem,
		OverspendAlerts: true,
	}
}

// User represents a user in the system
type User struct {
	ID          uuid.UUID   `json:"id"`
	AuthID      string      `json:"authId"`
	Email       string      `json:"email"`
	Name        *string     `json:"name"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetByAuthID(authID string) (*User, error)
	CreateOrGetByAuthID(authID, email string, name *string) (user *User, created bool, err error)
	UpdateName(authID string, name string) (*User, error)
	UpdatePreferences(authID string, prefs Preferences) (*User, error)
}

// ValidCurrencyCode reports whether code looks like an ISO 4217 code
// (three ASCII uppercase letters). An empty code is not valid.
func ValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
