package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/testutil"
)

func fiftyThirtyTwenty() domain.Split {
	return domain.Split{
		Needs:   decimal.NewFromInt(50),
		Wants:   decimal.NewFromInt(30),
		Savings: decimal.NewFromInt(20),
	}
}

func newBudgetService(budgetRepo *testutil.MockBudgetRepository, categoryRepo *testutil.MockCategoryRepository, transactionRepo *testutil.MockTransactionRepository) (*BudgetService, *testutil.CaptureEventPublisher) {
	events := &testutil.CaptureEventPublisher{}
	return NewBudgetService(budgetRepo, categoryRepo, transactionRepo, events), events
}

func TestCreateBudget_Success(t *testing.T) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	budgetService, events := newBudgetService(budgetRepo, categoryRepo, testutil.NewMockTransactionRepository())
	userID := uuid.New()

	budget, err := budgetService.CreateBudget(userID, CreateBudgetInput{
		Year:     2025,
		Month:    3,
		Income:   decimal.NewFromInt(1000),
		Currency: "TZS",
		Split:    fiftyThirtyTwenty(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rows, _ := budgetRepo.GetCategories(budget.ID)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 group allocation rows, got %d", len(rows))
	}

	total := decimal.Zero
	for _, row := range rows {
		if row.CategoryID != nil {
			t.Error("Expected group rows to have no category")
		}
		total = total.Add(row.Amount)
	}
	if !total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected allocations to sum to income, got %s", total)
	}

	types := events.EventTypes()
	if len(types) != 1 || types[0] != "budget.created" {
		t.Errorf("Expected one budget.created event, got %v", types)
	}
}

func TestCreateBudget_WithCategoryRows(t *testing.T) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	budgetService, _ := newBudgetService(budgetRepo, categoryRepo, testutil.NewMockTransactionRepository())
	userID := uuid.New()

	categoryRepo.AddCategory(&domain.Category{ID: 4, Name: "Rent", IsSystem: true})

	budget, err := budgetService.CreateBudget(userID, CreateBudgetInput{
		Year:     2025,
		Month:    4,
		Income:   decimal.NewFromInt(2000),
		Currency: "TZS",
		Split:    fiftyThirtyTwenty(),
		Categories: []CategoryAllocationInput{
			{CategoryID: 4, Group: domain.GroupNeeds, Amount: decimal.NewFromInt(600)},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rows, _ := budgetRepo.GetCategories(budget.ID)
	if len(rows) != 4 {
		t.Fatalf("Expected 3 group rows plus 1 category row, got %d", len(rows))
	}
}

func TestCreateBudget_InvalidSplit(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	_, err := budgetService.CreateBudget(uuid.New(), CreateBudgetInput{
		Year:     2025,
		Month:    3,
		Income:   decimal.NewFromInt(1000),
		Currency: "TZS",
		Split: domain.Split{
			Needs:   decimal.NewFromInt(50),
			Wants:   decimal.NewFromInt(30),
			Savings: decimal.NewFromInt(21),
		},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestCreateBudget_Duplicate(t *testing.T) {
	budgetRepo := testutil.NewMockBudgetRepository()
	budgetService, _ := newBudgetService(budgetRepo, testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())
	userID := uuid.New()

	input := CreateBudgetInput{
		Year:     2025,
		Month:    5,
		Income:   decimal.NewFromInt(1000),
		Currency: "TZS",
		Split:    fiftyThirtyTwenty(),
	}
	if _, err := budgetService.CreateBudget(userID, input); err != nil {
		t.Fatalf("Expected first create to succeed, got %v", err)
	}

	_, err := budgetService.CreateBudget(userID, input)
	if !errors.Is(err, domain.ErrBudgetExists) {
		t.Errorf("Expected ErrBudgetExists, got %v", err)
	}
}

func TestCreateBudget_PartialFailure(t *testing.T) {
	budgetRepo := testutil.NewMockBudgetRepository()
	writeErr := errors.New("connection reset")
	budgetRepo.CreateCategoriesFn = func(budgetID int32, rows []*domain.BudgetCategory) error {
		return writeErr
	}
	budgetService, _ := newBudgetService(budgetRepo, testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	_, err := budgetService.CreateBudget(uuid.New(), CreateBudgetInput{
		Year:     2025,
		Month:    6,
		Income:   decimal.NewFromInt(1000),
		Currency: "TZS",
		Split:    fiftyThirtyTwenty(),
	})

	var partial *domain.BudgetPartialError
	if !errors.As(err, &partial) {
		t.Fatalf("Expected BudgetPartialError, got %v", err)
	}
	if partial.BudgetID == 0 {
		t.Error("Expected the partial error to carry the created budget ID")
	}
	if !errors.Is(err, writeErr) {
		t.Error("Expected the underlying write error to be wrapped")
	}
}

func TestRollup_NoBudget(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	rollup, err := budgetService.Rollup(uuid.New(), 2025, 2)
	if err != nil {
		t.Fatalf("Expected no error for a month without a budget, got %v", err)
	}
	if rollup.Budget != nil {
		t.Error("Expected a nil budget in the empty rollup")
	}
	if !rollup.TotalAllocated.IsZero() || !rollup.TotalSpent.IsZero() {
		t.Error("Expected zeroed totals in the empty rollup")
	}
}

func TestRollup_InvalidPeriod(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	_, err := budgetService.Rollup(uuid.New(), 2025, 13)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestRollupStrict_NoBudget(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	_, err := budgetService.RollupStrict(uuid.New(), 2025, 2)
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("Expected ErrBudgetNotFound, got %v", err)
	}
}

func seedRollupFixture(t *testing.T, budgetRepo *testutil.MockBudgetRepository, categoryRepo *testutil.MockCategoryRepository, transactionRepo *testutil.MockTransactionRepository, userID uuid.UUID) {
	t.Helper()

	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Groceries", IsSystem: true})
	categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Transport", IsSystem: true})
	categoryRepo.AddCategory(&domain.Category{ID: 3, Name: "Rent", IsSystem: true})

	groceries := int32(1)
	rent := int32(3)
	budgetRepo.AddBudget(&domain.Budget{
		ID:       10,
		UserID:   userID,
		Year:     2025,
		Month:    3,
		Income:   decimal.NewFromInt(1000),
		Currency: "TZS",
		Split:    fiftyThirtyTwenty(),
	}, []*domain.BudgetCategory{
		{ID: 1, BudgetID: 10, Group: domain.GroupNeeds, Amount: decimal.NewFromInt(500)},
		{ID: 2, BudgetID: 10, Group: domain.GroupWants, Amount: decimal.NewFromInt(300)},
		{ID: 3, BudgetID: 10, Group: domain.GroupSavings, Amount: decimal.NewFromInt(200)},
		{ID: 4, BudgetID: 10, CategoryID: &groceries, Group: domain.GroupNeeds, Amount: decimal.NewFromInt(300)},
		{ID: 5, BudgetID: 10, CategoryID: &rent, Group: domain.GroupNeeds, Amount: decimal.NewFromInt(200)},
	})

	catGroceries := int32(1)
	catTransport := int32(2)
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, CategoryID: &catGroceries,
		Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(650),
		Date: mustDate(t, 2025, 3, 10),
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 2, UserID: userID, CategoryID: &catTransport,
		Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(80),
		Date: mustDate(t, 2025, 3, 12),
	})
}

func TestRollup_OverspendAndUnbudgeted(t *testing.T) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetService, _ := newBudgetService(budgetRepo, categoryRepo, transactionRepo)
	userID := uuid.New()

	seedRollupFixture(t, budgetRepo, categoryRepo, transactionRepo, userID)

	rollup, err := budgetService.Rollup(userID, 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Category rows subdivide the groups; only group rows count
	if !rollup.TotalAllocated.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected total allocated 1000, got %s", rollup.TotalAllocated)
	}
	if !rollup.TotalSpent.Equal(decimal.NewFromInt(730)) {
		t.Errorf("Expected total spent 730, got %s", rollup.TotalSpent)
	}

	var groceries, transport, rent *domain.BudgetLine
	for i := range rollup.Lines {
		switch rollup.Lines[i].CategoryID {
		case 1:
			groceries = &rollup.Lines[i]
		case 2:
			transport = &rollup.Lines[i]
		case 3:
			rent = &rollup.Lines[i]
		}
	}

	if groceries == nil {
		t.Fatal("Expected a groceries line")
	}
	if groceries.CategoryName != "Groceries" {
		t.Errorf("Expected category name Groceries, got %q", groceries.CategoryName)
	}
	if !groceries.Remaining.Equal(decimal.NewFromInt(-350)) {
		t.Errorf("Expected groceries remaining -350, got %s", groceries.Remaining)
	}

	if transport == nil {
		t.Fatal("Expected an unbudgeted transport line")
	}
	if !transport.Unbudgeted {
		t.Error("Expected transport spend to be flagged unbudgeted")
	}

	if rent == nil {
		t.Fatal("Expected a rent line")
	}
	if rent.CategoryName != "Rent" {
		t.Errorf("Expected unspent line to carry its name, got %q", rent.CategoryName)
	}
	if !rent.Spent.IsZero() {
		t.Errorf("Expected rent spent 0, got %s", rent.Spent)
	}
}

func TestCheckOverspend(t *testing.T) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetService, _ := newBudgetService(budgetRepo, categoryRepo, transactionRepo)
	userID := uuid.New()

	seedRollupFixture(t, budgetRepo, categoryRepo, transactionRepo, userID)

	alerts, err := budgetService.CheckOverspend(userID, 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected exactly one alert (unbudgeted spend excluded), got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.CategoryID != 1 {
		t.Errorf("Expected alert for category 1, got %d", alert.CategoryID)
	}
	if !alert.Spent.Equal(decimal.NewFromInt(650)) || !alert.Allocated.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected 650 spent of 300 allocated, got %s of %s", alert.Spent, alert.Allocated)
	}
	if alert.CategoryName != "Groceries" {
		t.Errorf("Expected alert category name Groceries, got %q", alert.CategoryName)
	}
	if alert.Currency != "TZS" {
		t.Errorf("Expected currency TZS, got %s", alert.Currency)
	}
}

func TestCheckOverspend_NoBudget(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	alerts, err := budgetService.CheckOverspend(uuid.New(), 2025, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Expected no alerts without a budget, got %d", len(alerts))
	}
}

func TestPreviewAllocation(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	allocation, err := budgetService.PreviewAllocation(decimal.NewFromInt(1000), fiftyThirtyTwenty())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !allocation.Needs.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected needs 500, got %s", allocation.Needs)
	}
	if !allocation.Total().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected allocation to sum to income, got %s", allocation.Total())
	}
}

func TestRebalance(t *testing.T) {
	budgetService, _ := newBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	split, err := budgetService.Rebalance(fiftyThirtyTwenty(), domain.SplitNeeds, decimal.NewFromInt(70))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !split.Wants.Equal(decimal.NewFromInt(15)) || !split.Savings.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Expected the remainder split equally (15/15), got %s/%s", split.Wants, split.Savings)
	}
}
