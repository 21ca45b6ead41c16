package service

import (
	"strings"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile retrieves a user's profile by auth subject
func (s *ProfileService) GetProfile(authID string) (*domain.User, error) {
	return s.userRepo.GetByAuthID(authID)
}

// UpdateProfile updates a user's display name
func (s *ProfileService) UpdateProfile(authID string, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	return s.userRepo.UpdateName(authID, name)
}

// UpdatePreferences updates a user's preferences with validation
func (s *ProfileService) UpdatePreferences(authID string, prefs domain.Preferences) (*domain.User, error) {
	if prefs.Currency != "" && !domain.ValidCurrencyCode(prefs.Currency) {
		return nil, domain.ErrInvalidCurrency
	}

	switch prefs.Theme {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
	case "":
		prefs.Theme = domain.ThemeSystem
	default:
		return nil, domain.NewValidationError("theme", "must be light, dark or system")
	}

	if prefs.Language == "" {
		prefs.Language = "en"
	}

	return s.userRepo.UpdatePreferences(authID, prefs)
}
