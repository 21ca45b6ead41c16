package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies transactions. System categories are seeded reference
// data shared by everyone; user categories belong to exactly one user.
type Category struct {
	ID        int32      `json:"id"`
	Name      string     `json:"name"`
	IsSystem  bool       `json:"isSystem"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	// GetForUser returns the category if it is a system category or owned by the user
	GetForUser(userID uuid.UUID, id int32) (*Category, error)
	GetAllForUser(userID uuid.UUID) ([]*Category, error)
	Delete(userID uuid.UUID, id int32) error
	HasTransactions(userID uuid.UUID, id int32) (bool, error)
}
