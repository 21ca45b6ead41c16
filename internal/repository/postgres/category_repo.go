package postgres

import (
	"context"
	"errors"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a user-defined category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO categories (name, is_system, user_id)
		 VALUES ($1, FALSE, $2)
		 RETURNING id, created_at`,
		category.Name, category.UserID)
	if err := row.Scan(&category.ID, &category.CreatedAt); err != nil {
		return nil, err
	}
	category.IsSystem = false
	return category, nil
}

// GetForUser returns the category when it is a system category or owned by the user
func (r *CategoryRepository) GetForUser(userID uuid.UUID, id int32) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(context.Background(),
		`SELECT id, name, is_system, user_id, created_at
		 FROM categories
		 WHERE id = $1 AND (is_system OR user_id = $2)`,
		id, userID).Scan(&c.ID, &c.Name, &c.IsSystem, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetAllForUser returns system categories plus the user's own, name ascending
func (r *CategoryRepository) GetAllForUser(userID uuid.UUID) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, name, is_system, user_id, created_at
		 FROM categories
		 WHERE is_system OR user_id = $1
		 ORDER BY name`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsSystem, &c.UserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

// Delete removes a user-owned category
func (r *CategoryRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM categories WHERE id = $1 AND user_id = $2 AND NOT is_system`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasTransactions reports whether any of the user's transactions reference the category
func (r *CategoryRepository) HasTransactions(userID uuid.UUID, id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1 AND category_id = $2)`,
		userID, id).Scan(&exists)
	return exists, err
}
