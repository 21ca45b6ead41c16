package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// GetCategories returns system categories plus the user's own
func (s *CategoryService) GetCategories(userID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllForUser(userID)
}

// CreateCategory creates a user-owned category with validation
func (s *CategoryService) CreateCategory(userID uuid.UUID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	return s.categoryRepo.Create(&domain.Category{
		Name:   name,
		UserID: &userID,
	})
}

// DeleteCategory removes a user-owned category. System categories and
// categories still referenced by transactions cannot be deleted.
func (s *CategoryService) DeleteCategory(userID uuid.UUID, id int32) error {
	category, err := s.categoryRepo.GetForUser(userID, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return domain.ErrSystemCategory
	}

	inUse, err := s.categoryRepo.HasTransactions(userID, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrCategoryInUse
	}

	return s.categoryRepo.Delete(userID, id)
}
