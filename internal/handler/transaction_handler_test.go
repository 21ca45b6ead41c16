package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/cache"
	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/middleware"
	"github.com/bajeti/bajeti-backend/internal/service"
	"github.com/bajeti/bajeti-backend/internal/testutil"
)

type transactionHandlerFixture struct {
	handler         *TransactionHandler
	transactionRepo *testutil.MockTransactionRepository
	categoryRepo    *testutil.MockCategoryRepository
	accountRepo     *testutil.MockAccountRepository
	store           *testutil.MockReceiptStore
}

func newTransactionHandlerFixture() *transactionHandlerFixture {
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	accountRepo := testutil.NewMockAccountRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	userRepo := testutil.NewMockUserRepository()
	store := testutil.NewMockReceiptStore()
	events := &testutil.CaptureEventPublisher{}

	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, transactionRepo, events)
	reportService := service.NewReportService(transactionRepo, categoryRepo, &cache.NoopCache{})
	alertService := service.NewAlertService(budgetService, userRepo, events, &testutil.CaptureAlertPublisher{})
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo, accountRepo, reportService, alertService, events)
	receiptService := service.NewReceiptService(transactionRepo, store)

	return &transactionHandlerFixture{
		handler:         NewTransactionHandler(transactionService, receiptService),
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		accountRepo:     accountRepo,
		store:           store,
	}
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	f := newTransactionHandlerFixture()
	userID := uuid.New()
	f.categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Groceries", IsSystem: true})

	body := `{"categoryId":2,"type":"expense","amount":"45.50","date":"2025-03-10","description":"Market"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/transactions", body, userID)

	if err := f.handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Amount != "45.50" {
		t.Errorf("Expected amount 45.50, got %s", resp.Amount)
	}
	if resp.IsIncome {
		t.Error("Expected expense to not be income")
	}
	if resp.Date != "2025-03-10" {
		t.Errorf("Expected date 2025-03-10, got %s", resp.Date)
	}
}

func TestTransactionHandler_CreateTransaction_BadAmount(t *testing.T) {
	f := newTransactionHandlerFixture()

	body := `{"type":"expense","amount":"abc"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/transactions", body, uuid.New())

	if err := f.handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_CreateTransaction_UnknownCategory(t *testing.T) {
	f := newTransactionHandlerFixture()

	body := `{"categoryId":99,"type":"expense","amount":"10"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/transactions", body, uuid.New())

	if err := f.handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "categoryId" {
		t.Errorf("Expected categoryId field error, got %+v", problem.Errors)
	}
}

func TestTransactionHandler_GetTransactions_Filtered(t *testing.T) {
	f := newTransactionHandlerFixture()
	userID := uuid.New()
	categoryID := int32(2)

	f.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, CategoryID: &categoryID, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(20), Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	f.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 2, UserID: userID, Type: domain.TransactionTypeIncome,
		Amount: decimal.NewFromInt(500), Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	c, rec := newTestContext(http.MethodGet, "/api/v1/transactions?type=expense", "", userID)

	if err := f.handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp TransactionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.TotalItems != 1 {
		t.Fatalf("Expected 1 transaction, got %d", resp.TotalItems)
	}
	if resp.Data[0].Type != "expense" {
		t.Errorf("Expected expense, got %s", resp.Data[0].Type)
	}
}

func TestTransactionHandler_GetTransactions_InvalidType(t *testing.T) {
	f := newTransactionHandlerFixture()

	c, rec := newTestContext(http.MethodGet, "/api/v1/transactions?type=transfer", "", uuid.New())

	if err := f.handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func multipartReceiptRequest(t *testing.T, path string, image []byte, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "receipt.png")
	if err != nil {
		t.Fatalf("Failed to build form: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}
	writer.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.WithUserID(c, userID)
	return c, rec
}

func TestTransactionHandler_AttachReceipt(t *testing.T) {
	f := newTransactionHandlerFixture()
	userID := uuid.New()

	f.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(20), Date: time.Now(),
	})

	c, rec := multipartReceiptRequest(t, "/api/v1/transactions/1/receipt", testImagePNG(t, 100, 100), userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.AttachReceipt(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ReceiptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.URL == "" {
		t.Error("Expected a receipt URL")
	}
	if len(f.store.Objects) != 1 {
		t.Errorf("Expected 1 stored object, got %d", len(f.store.Objects))
	}
}

func TestTransactionHandler_GetReceipt_None(t *testing.T) {
	f := newTransactionHandlerFixture()
	userID := uuid.New()

	f.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(20), Date: time.Now(),
	})

	c, rec := newTestContext(http.MethodGet, "/api/v1/transactions/1/receipt", "", userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetReceipt(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
}
