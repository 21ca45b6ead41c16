package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, category_id, account_id, tx_type, amount::text, tx_date, description, receipt_key, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount string
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.AccountID, &t.Type, &amount, &t.Date, &t.Description, &t.ReceiptKey, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	t.Amount = parseDecimal(amount)
	return &t, nil
}

// Create inserts a transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO transactions (user_id, category_id, account_id, tx_type, amount, tx_date, description)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		 RETURNING `+transactionColumns,
		transaction.UserID, transaction.CategoryID, transaction.AccountID,
		transaction.Type, transaction.Amount.String(), transaction.Date, transaction.Description)
	return scanTransaction(row)
}

// GetByID retrieves a transaction owned by the user
func (r *TransactionRepository) GetByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID)
	return scanTransaction(row)
}

// GetByUser lists the user's transactions with filters and pagination
func (r *TransactionRepository) GetByUser(userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	next := 2

	addFilter := func(clause string, value interface{}) {
		where += fmt.Sprintf(" AND %s $%d", clause, next)
		args = append(args, value)
		next++
	}

	if filters.CategoryID != nil {
		addFilter("category_id =", *filters.CategoryID)
	}
	if filters.AccountID != nil {
		addFilter("account_id =", *filters.AccountID)
	}
	if filters.Type != nil {
		addFilter("tx_type =", *filters.Type)
	}
	if filters.StartDate != nil {
		addFilter("tx_date >=", *filters.StartDate)
	}
	if filters.EndDate != nil {
		addFilter("tx_date <", *filters.EndDate)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY tx_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, next, next+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		data = append(data, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GetByPeriod returns all transactions dated within the given month
func (r *TransactionRepository) GetByPeriod(userID uuid.UUID, year, month int) ([]*domain.Transaction, error) {
	start, end := util.MonthBounds(year, month)

	rows, err := r.pool.Query(context.Background(),
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = $1 AND tx_date >= $2 AND tx_date < $3
		 ORDER BY tx_date, id`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// SetReceiptKey stores (or clears) the receipt object key for a transaction
func (r *TransactionRepository) SetReceiptKey(userID uuid.UUID, id int32, key *string) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE transactions SET receipt_key = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
