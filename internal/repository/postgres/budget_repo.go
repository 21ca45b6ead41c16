package postgres

import (
	"context"
	"errors"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, year, month, income::text, currency, needs_pct::text, wants_pct::text, savings_pct::text, created_at, updated_at`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var income, needs, wants, savings string
	err := row.Scan(&b.ID, &b.UserID, &b.Year, &b.Month, &income, &b.Currency,
		&needs, &wants, &savings, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	b.Income = parseDecimal(income)
	b.Split = domain.Split{
		Needs:   parseDecimal(needs),
		Wants:   parseDecimal(wants),
		Savings: parseDecimal(savings),
	}
	return &b, nil
}

// Create inserts the budget row. The unique index on (user_id, year, month)
// turns a duplicate period into ErrBudgetExists.
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO budgets (user_id, year, month, income, currency, needs_pct, wants_pct, savings_pct)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7::numeric, $8::numeric)
		 RETURNING `+budgetColumns,
		budget.UserID, budget.Year, budget.Month, budget.Income.String(), budget.Currency,
		budget.Split.Needs.String(), budget.Split.Wants.String(), budget.Split.Savings.String())
	created, err := scanBudget(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrBudgetExists
		}
		return nil, err
	}
	return created, nil
}

// CreateCategories inserts the allocation rows for a budget in one
// transaction. This is deliberately a separate call from Create so callers
// can report a failed second write distinctly.
func (r *BudgetRepository) CreateCategories(budgetID int32, rows []*domain.BudgetCategory) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		err := tx.QueryRow(ctx,
			`INSERT INTO budget_categories (budget_id, category_id, alloc_group, amount)
			 VALUES ($1, $2, $3, $4::numeric)
			 RETURNING id`,
			budgetID, row.CategoryID, row.Group, row.Amount.String()).Scan(&row.ID)
		if err != nil {
			return err
		}
		row.BudgetID = budgetID
	}

	return tx.Commit(ctx)
}

// GetByPeriod retrieves the budget for a user's month
func (r *BudgetRepository) GetByPeriod(userID uuid.UUID, year, month int) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND year = $2 AND month = $3`,
		userID, year, month)
	return scanBudget(row)
}

// GetAllByUser lists the user's budgets, most recent first
func (r *BudgetRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY year DESC, month DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// GetCategories returns the allocation rows under a budget
func (r *BudgetRepository) GetCategories(budgetID int32) ([]*domain.BudgetCategory, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, budget_id, category_id, alloc_group, amount::text
		 FROM budget_categories WHERE budget_id = $1 ORDER BY id`,
		budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.BudgetCategory
	for rows.Next() {
		var bc domain.BudgetCategory
		var amount string
		if err := rows.Scan(&bc.ID, &bc.BudgetID, &bc.CategoryID, &bc.Group, &amount); err != nil {
			return nil, err
		}
		bc.Amount = parseDecimal(amount)
		result = append(result, &bc)
	}
	return result, rows.Err()
}
