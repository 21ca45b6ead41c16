package service

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo domain.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	IsNewUser bool
}

// AuthenticateUser handles the post-login callback. The user is provisioned
// on first sight with default preferences.
func (s *AuthService) AuthenticateUser(authID, email string, name *string) (*AuthResult, error) {
	user, created, err := s.userRepo.CreateOrGetByAuthID(authID, email, name)
	if err != nil {
		log.Error().Err(err).Str("auth_id", authID).Msg("Failed to create or get user")
		return nil, err
	}

	if created {
		log.Info().Str("user_id", user.ID.String()).Msg("Provisioned new user")
	}

	return &AuthResult{User: user, IsNewUser: created}, nil
}

// ResolveUser maps an external auth subject to the internal user ID,
// provisioning the user if needed. Satisfies middleware.UserProvider.
func (s *AuthService) ResolveUser(authID, email, name string) (uuid.UUID, error) {
	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	user, _, err := s.userRepo.CreateOrGetByAuthID(authID, email, namePtr)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuthID retrieves a user by their external auth subject
func (s *AuthService) GetUserByAuthID(authID string) (*domain.User, error) {
	return s.userRepo.GetByAuthID(authID)
}
