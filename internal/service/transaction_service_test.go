package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/testutil"
)

func mustDate(t *testing.T, year, month, day int) time.Time {
	t.Helper()
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

type txFixture struct {
	service  *TransactionService
	txRepo   *testutil.MockTransactionRepository
	catRepo  *testutil.MockCategoryRepository
	acctRepo *testutil.MockAccountRepository
	userRepo *testutil.MockUserRepository
	budgets  *testutil.MockBudgetRepository
	events   *testutil.CaptureEventPublisher
	alerts   *testutil.CaptureAlertPublisher
	cache    *testutil.MockReportCache
}

func newTxFixture() *txFixture {
	f := &txFixture{
		txRepo:   testutil.NewMockTransactionRepository(),
		catRepo:  testutil.NewMockCategoryRepository(),
		acctRepo: testutil.NewMockAccountRepository(),
		userRepo: testutil.NewMockUserRepository(),
		budgets:  testutil.NewMockBudgetRepository(),
		events:   &testutil.CaptureEventPublisher{},
		alerts:   &testutil.CaptureAlertPublisher{},
		cache:    testutil.NewMockReportCache(),
	}
	budgetService := NewBudgetService(f.budgets, f.catRepo, f.txRepo, f.events)
	alertService := NewAlertService(budgetService, f.userRepo, f.events, f.alerts)
	reportService := NewReportService(f.txRepo, f.catRepo, f.cache)
	f.service = NewTransactionService(f.txRepo, f.catRepo, f.acctRepo, reportService, alertService, f.events)
	return f
}

func TestCreateTransaction_Success(t *testing.T) {
	f := newTxFixture()
	userID := uuid.New()
	f.catRepo.AddCategory(&domain.Category{ID: 1, Name: "Groceries", IsSystem: true})

	categoryID := int32(1)
	date := mustDate(t, 2025, 3, 15)
	transaction, err := f.service.CreateTransaction(userID, CreateTransactionInput{
		CategoryID:  &categoryID,
		Type:        domain.TransactionTypeExpense,
		Amount:      decimal.NewFromInt(120),
		Date:        &date,
		Description: "weekly shop",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if transaction.ID == 0 {
		t.Error("Expected transaction to get an ID")
	}

	types := f.events.EventTypes()
	if len(types) == 0 || types[0] != "transaction.created" {
		t.Errorf("Expected a transaction.created event, got %v", types)
	}
	if len(f.cache.Invalidated) != 1 {
		t.Errorf("Expected the month's report cache to be invalidated, got %v", f.cache.Invalidated)
	}
}

func TestCreateTransaction_NegativeAmount(t *testing.T) {
	f := newTxFixture()

	_, err := f.service.CreateTransaction(uuid.New(), CreateTransactionInput{
		Type:   domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(-5),
	})
	if err != domain.ErrInvalidAmount {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateTransaction_InvalidType(t *testing.T) {
	f := newTxFixture()

	_, err := f.service.CreateTransaction(uuid.New(), CreateTransactionInput{
		Type:   "transfer",
		Amount: decimal.NewFromInt(5),
	})
	if err != domain.ErrInvalidTransactionType {
		t.Errorf("Expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestCreateTransaction_UnknownCategory(t *testing.T) {
	f := newTxFixture()

	categoryID := int32(42)
	_, err := f.service.CreateTransaction(uuid.New(), CreateTransactionInput{
		CategoryID: &categoryID,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(5),
	})
	if err != domain.ErrCategoryNotFound {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCreateTransaction_DefaultsDateToToday(t *testing.T) {
	f := newTxFixture()
	userID := uuid.New()

	transaction, err := f.service.CreateTransaction(userID, CreateTransactionInput{
		Type:   domain.TransactionTypeIncome,
		Amount: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !transaction.Date.Equal(today) {
		t.Errorf("Expected date to default to today (%s), got %s", today, transaction.Date)
	}
}

func TestCreateTransaction_OverspendTriggersAlert(t *testing.T) {
	f := newTxFixture()
	userID := uuid.New()

	f.catRepo.AddCategory(&domain.Category{ID: 1, Name: "Groceries", IsSystem: true})
	f.userRepo.AddUser(&domain.User{
		ID:          userID,
		AuthID:      "auth0|spender",
		Preferences: domain.DefaultPreferences(),
	})

	groceries := int32(1)
	f.budgets.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, Year: 2025, Month: 3,
		Income: decimal.NewFromInt(1000), Currency: "TZS",
		Split: fiftyThirtyTwenty(),
	}, []*domain.BudgetCategory{
		{ID: 1, BudgetID: 1, CategoryID: &groceries, Group: domain.GroupNeeds, Amount: decimal.NewFromInt(500)},
	})

	date := mustDate(t, 2025, 3, 20)
	_, err := f.service.CreateTransaction(userID, CreateTransactionInput{
		CategoryID: &groceries,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(650),
		Date:       &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(f.alerts.Alerts) != 1 {
		t.Fatalf("Expected one overspend alert, got %d", len(f.alerts.Alerts))
	}
	if !f.alerts.Alerts[0].Spent.Equal(decimal.NewFromInt(650)) {
		t.Errorf("Expected alert spent 650, got %s", f.alerts.Alerts[0].Spent)
	}

	var sawOverspent bool
	for _, typ := range f.events.EventTypes() {
		if typ == "budget.overspent" {
			sawOverspent = true
		}
	}
	if !sawOverspent {
		t.Error("Expected a budget.overspent event")
	}
}

func TestCreateTransaction_AlertsRespectPreference(t *testing.T) {
	f := newTxFixture()
	userID := uuid.New()

	f.catRepo.AddCategory(&domain.Category{ID: 1, Name: "Groceries", IsSystem: true})
	prefs := domain.DefaultPreferences()
	prefs.OverspendAlerts = false
	f.userRepo.AddUser(&domain.User{ID: userID, AuthID: "auth0|quiet", Preferences: prefs})

	groceries := int32(1)
	f.budgets.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, Year: 2025, Month: 3,
		Income: decimal.NewFromInt(1000), Currency: "TZS",
		Split: fiftyThirtyTwenty(),
	}, []*domain.BudgetCategory{
		{ID: 1, BudgetID: 1, CategoryID: &groceries, Group: domain.GroupNeeds, Amount: decimal.NewFromInt(500)},
	})

	date := mustDate(t, 2025, 3, 20)
	_, err := f.service.CreateTransaction(userID, CreateTransactionInput{
		CategoryID: &groceries,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(650),
		Date:       &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(f.alerts.Alerts) != 0 {
		t.Errorf("Expected no broker alert when the preference is off, got %d", len(f.alerts.Alerts))
	}

	// The live dashboard event still fires regardless of the preference
	var sawOverspent bool
	for _, typ := range f.events.EventTypes() {
		if typ == "budget.overspent" {
			sawOverspent = true
		}
	}
	if !sawOverspent {
		t.Error("Expected a budget.overspent event even with alerts off")
	}
}

func TestGetTransactions_ClampsPagination(t *testing.T) {
	f := newTxFixture()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		f.txRepo.AddTransaction(&domain.Transaction{
			ID: int32(i + 1), UserID: userID,
			Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(10),
			Date: mustDate(t, 2025, 3, i+1),
		})
	}

	page, err := f.service.GetTransactions(userID, &domain.TransactionFilters{Page: 0, PageSize: 1000})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Expected page to clamp to 1, got %d", page.Page)
	}
	if page.PageSize != domain.MaxPageSize {
		t.Errorf("Expected page size to clamp to %d, got %d", domain.MaxPageSize, page.PageSize)
	}
	if page.TotalItems != 3 {
		t.Errorf("Expected 3 items, got %d", page.TotalItems)
	}
}
