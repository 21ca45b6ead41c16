package postgres

import (
	"context"
	"errors"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, auth_id, email, name, COALESCE(currency, ''), language, theme, overspend_alerts, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.AuthID, &u.Email, &u.Name,
		&u.Preferences.Currency, &u.Preferences.Language, &u.Preferences.Theme, &u.Preferences.OverspendAlerts,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByAuthID retrieves a user by external auth subject
func (r *UserRepository) GetByAuthID(authID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE auth_id = $1`, authID)
	return scanUser(row)
}

// CreateOrGetByAuthID provisions a user on first sign-in
func (r *UserRepository) CreateOrGetByAuthID(authID, email string, name *string) (*domain.User, bool, error) {
	ctx := context.Background()

	if user, err := r.GetByAuthID(authID); err == nil {
		return user, false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	prefs := domain.DefaultPreferences()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth_id, email, name, language, theme, overspend_alerts)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (auth_id) DO UPDATE SET email = EXCLUDED.email
		 RETURNING `+userColumns,
		authID, email, name, prefs.Language, prefs.Theme, prefs.OverspendAlerts)
	user, err := scanUser(row)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// UpdateName updates the user's display name
func (r *UserRepository) UpdateName(authID string, name string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE users SET name = $2, updated_at = now() WHERE auth_id = $1 RETURNING `+userColumns,
		authID, name)
	return scanUser(row)
}

// UpdatePreferences replaces the user's preferences
func (r *UserRepository) UpdatePreferences(authID string, prefs domain.Preferences) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE users
		 SET currency = NULLIF($2, ''), language = $3, theme = $4, overspend_alerts = $5, updated_at = now()
		 WHERE auth_id = $1
		 RETURNING `+userColumns,
		authID, prefs.Currency, prefs.Language, prefs.Theme, prefs.OverspendAlerts)
	return scanUser(row)
}
