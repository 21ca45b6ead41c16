package postgres

import (
	"context"
	"errors"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, name, account_type, balance::text, currency, created_at, updated_at, deleted_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var balance string
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	a.Balance = parseDecimal(balance)
	return &a, nil
}

// Create inserts an account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO accounts (user_id, name, account_type, balance, currency)
		 VALUES ($1, $2, $3, $4::numeric, $5)
		 RETURNING `+accountColumns,
		account.UserID, account.Name, account.Type, account.Balance.String(), account.Currency)
	return scanAccount(row)
}

// GetByID retrieves a non-archived account owned by the user
func (r *AccountRepository) GetByID(userID uuid.UUID, id int32) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID)
	return scanAccount(row)
}

// GetAllByUser lists the user's accounts
func (r *AccountRepository) GetAllByUser(userID uuid.UUID, includeArchived bool) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	if !includeArchived {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(context.Background(), query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

// UpdateName renames an account
func (r *AccountRepository) UpdateName(userID uuid.UUID, id int32, name string) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE accounts SET name = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 RETURNING `+accountColumns,
		id, userID, name)
	return scanAccount(row)
}

// UpdateBalance replaces the account's snapshot balance
func (r *AccountRepository) UpdateBalance(userID uuid.UUID, id int32, balance decimal.Decimal) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE accounts SET balance = $3::numeric, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 RETURNING `+accountColumns,
		id, userID, balance.String())
	return scanAccount(row)
}

// SoftDelete archives an account
func (r *AccountRepository) SoftDelete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE accounts SET deleted_at = now() WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
