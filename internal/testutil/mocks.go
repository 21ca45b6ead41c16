// Package testutil provides in-memory mock implementations of the domain
// repository interfaces and collaborator ports for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(authID, email string, name *string) (*domain.User, bool, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuthID retrieves a user by auth subject
func (m *MockUserRepository) GetByAuthID(authID string) (*domain.User, error) {
	if user, ok := m.Users[authID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuthID creates or retrieves a user by auth subject
func (m *MockUserRepository) CreateOrGetByAuthID(authID, email string, name *string) (*domain.User, bool, error) {
	if m.CreateFn != nil {
		return m.CreateFn(authID, email, name)
	}
	if user, ok := m.Users[authID]; ok {
		return user, false, nil
	}
	user := &domain.User{
		ID:          uuid.New(),
		AuthID:      authID,
		Email:       email,
		Name:        name,
		Preferences: domain.DefaultPreferences(),
		CreatedAt:   time.Now(),
	}
	m.AddUser(user)
	return user, true, nil
}

// UpdateName updates the user's display name
func (m *MockUserRepository) UpdateName(authID string, name string) (*domain.User, error) {
	user, ok := m.Users[authID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	return user, nil
}

// UpdatePreferences replaces the user's preferences
func (m *MockUserRepository) UpdatePreferences(authID string, prefs domain.Preferences) (*domain.User, error) {
	user, ok := m.Users[authID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Preferences = prefs
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.AuthID] = user
	m.ByID[user.ID] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	InUse      map[int32]bool
	NextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		InUse:      make(map[int32]bool),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	category.ID = m.NextID
	category.CreatedAt = time.Now()
	m.NextID++
	m.Categories[category.ID] = category
	return category, nil
}

// GetForUser returns the category if it is visible to the user
func (m *MockCategoryRepository) GetForUser(userID uuid.UUID, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if !category.IsSystem && (category.UserID == nil || *category.UserID != userID) {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetAllForUser returns system categories plus the user's own
func (m *MockCategoryRepository) GetAllForUser(userID uuid.UUID) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, c := range m.Categories {
		if c.IsSystem || (c.UserID != nil && *c.UserID == userID) {
			result = append(result, c)
		}
	}
	return result, nil
}

// Delete removes a user-owned category
func (m *MockCategoryRepository) Delete(userID uuid.UUID, id int32) error {
	if _, err := m.GetForUser(userID, id); err != nil {
		return err
	}
	delete(m.Categories, id)
	return nil
}

// HasTransactions reports whether the category is referenced by transactions
func (m *MockCategoryRepository) HasTransactions(userID uuid.UUID, id int32) (bool, error) {
	return m.InUse[id], nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	NextID   int32
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// Create creates a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	account.ID = m.NextID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.NextID++
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account owned by the user
func (m *MockAccountRepository) GetByID(userID uuid.UUID, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID || account.DeletedAt != nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetAllByUser retrieves the user's accounts
func (m *MockAccountRepository) GetAllByUser(userID uuid.UUID, includeArchived bool) ([]*domain.Account, error) {
	var result []*domain.Account
	for _, a := range m.Accounts {
		if a.UserID != userID {
			continue
		}
		if a.DeletedAt != nil && !includeArchived {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// UpdateName renames an account
func (m *MockAccountRepository) UpdateName(userID uuid.UUID, id int32, name string) (*domain.Account, error) {
	account, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	account.Name = name
	account.UpdatedAt = time.Now()
	return account, nil
}

// UpdateBalance sets a new balance snapshot
func (m *MockAccountRepository) UpdateBalance(userID uuid.UUID, id int32, balance decimal.Decimal) (*domain.Account, error) {
	account, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	account.Balance = balance
	account.UpdatedAt = time.Now()
	return account, nil
}

// SoftDelete archives an account
func (m *MockAccountRepository) SoftDelete(userID uuid.UUID, id int32) error {
	account, err := m.GetByID(userID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	account.DeletedAt = &now
	return nil
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	m.Accounts[account.ID] = account
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32
	CreateFn     func(transaction *domain.Transaction) (*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	transaction.ID = m.NextID
	transaction.CreatedAt = time.Now()
	m.NextID++
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction owned by the user
func (m *MockTransactionRepository) GetByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	// Return a copy so callers see a row snapshot, like a real pgx scan
	copied := *transaction
	return &copied, nil
}

// GetByUser retrieves the user's transactions with filters and pagination
func (m *MockTransactionRepository) GetByUser(userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var matched []*domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		if filters.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.AccountID != nil && (t.AccountID == nil || *t.AccountID != *filters.AccountID) {
			continue
		}
		if filters.Type != nil && t.Type != *filters.Type {
			continue
		}
		if filters.StartDate != nil && t.Date.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && t.Date.After(*filters.EndDate) {
			continue
		}
		matched = append(matched, t)
	}

	total := int64(len(matched))
	totalPages := int32((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	start := int((filters.Page - 1) * filters.PageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(filters.PageSize)
	if end > len(matched) {
		end = len(matched)
	}

	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GetByPeriod retrieves the user's transactions within a calendar month
func (m *MockTransactionRepository) GetByPeriod(userID uuid.UUID, year, month int) ([]*domain.Transaction, error) {
	period := domain.Period{Year: year, Month: month}
	var result []*domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID == userID && period.Contains(t.Date) {
			result = append(result, t)
		}
	}
	return result, nil
}

// SetReceiptKey updates a transaction's receipt object key
func (m *MockTransactionRepository) SetReceiptKey(userID uuid.UUID, id int32, key *string) error {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	transaction.ReceiptKey = key
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
	m.Transactions[transaction.ID] = transaction
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets            map[int32]*domain.Budget
	Categories         map[int32][]*domain.BudgetCategory
	NextID             int32
	CreateCategoriesFn func(budgetID int32, rows []*domain.BudgetCategory) error
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets:    make(map[int32]*domain.Budget),
		Categories: make(map[int32][]*domain.BudgetCategory),
		NextID:     1,
	}
}

// Create inserts the budget row, enforcing one budget per (user, year, month)
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.UserID == budget.UserID && b.Year == budget.Year && b.Month == budget.Month {
			return nil, domain.ErrBudgetExists
		}
	}
	budget.ID = m.NextID
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.NextID++
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// CreateCategories inserts allocation rows for an existing budget
func (m *MockBudgetRepository) CreateCategories(budgetID int32, rows []*domain.BudgetCategory) error {
	if m.CreateCategoriesFn != nil {
		return m.CreateCategoriesFn(budgetID, rows)
	}
	if _, ok := m.Budgets[budgetID]; !ok {
		return domain.ErrBudgetNotFound
	}
	for i, row := range rows {
		row.ID = int32(len(m.Categories[budgetID]) + i + 1)
	}
	m.Categories[budgetID] = append(m.Categories[budgetID], rows...)
	return nil
}

// GetByPeriod retrieves the user's budget for a month
func (m *MockBudgetRepository) GetByPeriod(userID uuid.UUID, year, month int) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.UserID == userID && b.Year == year && b.Month == month {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// GetAllByUser retrieves all the user's budgets
func (m *MockBudgetRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Budget, error) {
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

// GetCategories retrieves a budget's allocation rows
func (m *MockBudgetRepository) GetCategories(budgetID int32) ([]*domain.BudgetCategory, error) {
	return m.Categories[budgetID], nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget, rows []*domain.BudgetCategory) {
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
	m.Categories[budget.ID] = rows
}

// MockReceiptStore is an in-memory implementation of storage.ReceiptStore
type MockReceiptStore struct {
	Objects  map[string][]byte
	UploadFn func(key string) error
}

// NewMockReceiptStore creates a new MockReceiptStore
func NewMockReceiptStore() *MockReceiptStore {
	return &MockReceiptStore{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockReceiptStore) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		if err := m.UploadFn(key); err != nil {
			return "", err
		}
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[key] = body
	return key, nil
}

// Delete removes the object
func (m *MockReceiptStore) Delete(ctx context.Context, key string) error {
	delete(m.Objects, key)
	return nil
}

// PresignedURL returns a fake URL for the object
func (m *MockReceiptStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := m.Objects[key]; !ok {
		return "", fmt.Errorf("object not found: %s", key)
	}
	return "https://receipts.test/" + key, nil
}

// MockReportCache is an in-memory implementation of cache.ReportCache
type MockReportCache struct {
	Entries     map[string][]domain.CategorySpend
	Invalidated []string
}

// NewMockReportCache creates a new MockReportCache
func NewMockReportCache() *MockReportCache {
	return &MockReportCache{Entries: make(map[string][]domain.CategorySpend)}
}

func (m *MockReportCache) key(userID uuid.UUID, period domain.Period, includeIncome bool) string {
	return fmt.Sprintf("%s:%d-%d:%t", userID, period.Year, period.Month, includeIncome)
}

// Get returns the cached report, or ok=false on a miss
func (m *MockReportCache) Get(userID uuid.UUID, period domain.Period, includeIncome bool) ([]domain.CategorySpend, bool) {
	report, ok := m.Entries[m.key(userID, period, includeIncome)]
	return report, ok
}

// Set stores a report for the period
func (m *MockReportCache) Set(userID uuid.UUID, period domain.Period, includeIncome bool, report []domain.CategorySpend) {
	m.Entries[m.key(userID, period, includeIncome)] = report
}

// InvalidatePeriod drops cached reports for the period
func (m *MockReportCache) InvalidatePeriod(userID uuid.UUID, period domain.Period) {
	delete(m.Entries, m.key(userID, period, false))
	delete(m.Entries, m.key(userID, period, true))
	m.Invalidated = append(m.Invalidated, fmt.Sprintf("%s:%d-%d", userID, period.Year, period.Month))
}

// CaptureEventPublisher records published WebSocket events
type CaptureEventPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

// Publish records the event
func (p *CaptureEventPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
}

// EventTypes returns the types of recorded events in order
func (p *CaptureEventPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.Events))
	for i, e := range p.Events {
		types[i] = e.Type
	}
	return types
}

// CaptureAlertPublisher records published overspend alerts
type CaptureAlertPublisher struct {
	Alerts []domain.OverspendAlert
	Err    error
}

// PublishOverspend records the alert
func (p *CaptureAlertPublisher) PublishOverspend(alert domain.OverspendAlert) error {
	if p.Err != nil {
		return p.Err
	}
	p.Alerts = append(p.Alerts, alert)
	return nil
}

// Close is a no-op
func (p *CaptureAlertPublisher) Close() error { return nil }
