package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/service"
	"github.com/bajeti/bajeti-backend/internal/testutil"
)

func newAccountHandler() (*AccountHandler, *testutil.MockAccountRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := service.NewAccountService(accountRepo, &testutil.CaptureEventPublisher{})
	return NewAccountHandler(accountService), accountRepo
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	handler, _ := newAccountHandler()

	body := `{"name":"CRDB","type":"bank","balance":"1500.75","currency":"TZS"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/accounts", body, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Balance != "1500.75" {
		t.Errorf("Expected balance 1500.75, got %s", resp.Balance)
	}
	if resp.Currency != "TZS" {
		t.Errorf("Expected currency TZS, got %s", resp.Currency)
	}
}

func TestAccountHandler_CreateAccount_InvalidType(t *testing.T) {
	handler, _ := newAccountHandler()

	body := `{"name":"Stocks","type":"brokerage","balance":"100","currency":"TZS"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/accounts", body, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "type" {
		t.Errorf("Expected type field error, got %+v", problem.Errors)
	}
}

func TestAccountHandler_UpdateBalance(t *testing.T) {
	handler, accountRepo := newAccountHandler()
	userID := uuid.New()

	accountRepo.AddAccount(&domain.Account{
		ID: 1, UserID: userID, Name: "M-Pesa", Type: domain.AccountTypeMobile,
		Balance: decimal.NewFromInt(100), Currency: "TZS",
	})

	body := `{"balance":"250.00"}`
	c, rec := newTestContext(http.MethodPatch, "/api/v1/accounts/1/balance", body, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.UpdateBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Balance != "250.00" {
		t.Errorf("Expected balance 250.00, got %s", resp.Balance)
	}
}

func TestAccountHandler_UpdateBalance_NotFound(t *testing.T) {
	handler, _ := newAccountHandler()

	body := `{"balance":"250.00"}`
	c, rec := newTestContext(http.MethodPatch, "/api/v1/accounts/9/balance", body, uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := handler.UpdateBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
}

func TestAccountHandler_ArchiveAccount(t *testing.T) {
	handler, accountRepo := newAccountHandler()
	userID := uuid.New()

	accountRepo.AddAccount(&domain.Account{
		ID: 1, UserID: userID, Name: "Old wallet", Type: domain.AccountTypeCash,
		Balance: decimal.Zero, Currency: "TZS",
	})

	c, rec := newTestContext(http.MethodDelete, "/api/v1/accounts/1", "", userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.ArchiveAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	c2, rec2 := newTestContext(http.MethodGet, "/api/v1/accounts", "", userID)
	if err := handler.GetAccounts(c2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var accounts []AccountResponse
	if err := json.Unmarshal(rec2.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected archived account hidden, got %d accounts", len(accounts))
	}
}
