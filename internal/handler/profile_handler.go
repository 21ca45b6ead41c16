package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/middleware"
	"github.com/bajeti/bajeti-backend/internal/service"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Name        *string            `json:"name"`
	Preferences domain.Preferences `json:"preferences"`
	CreatedAt   string             `json:"createdAt"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
		Preferences: user.Preferences,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

// UpdateProfileRequest represents the update profile request body
type UpdateProfileRequest struct {
	Name        *string             `json:"name,omitempty"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	authID := middleware.GetAuthID(c)
	if authID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.profileService.GetProfile(authID)
	if err != nil {
		return NewNotFoundError(c, "User not found")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	authID := middleware.GetAuthID(c)
	if authID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Name == nil && req.Preferences == nil {
		return NewValidationError(c, "Nothing to update", nil)
	}

	var user *domain.User
	var err error

	if req.Name != nil {
		user, err = h.profileService.UpdateProfile(authID, *req.Name)
		if err != nil {
			return profileUpdateError(c, authID, err)
		}
	}

	if req.Preferences != nil {
		user, err = h.profileService.UpdatePreferences(authID, *req.Preferences)
		if err != nil {
			return profileUpdateError(c, authID, err)
		}
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

func profileUpdateError(c echo.Context, authID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is too long"},
		})
	case errors.Is(err, domain.ErrInvalidCurrency):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currency", Message: "Must be a 3-letter ISO 4217 code"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	}
	log.Error().Err(err).Str("auth_id", authID).Msg("Failed to update profile")
	return NewInternalError(c, "Failed to update profile")
}
