package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/money"
)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	protected := r.Group("/", injectUserID("user-1"))
	protected.POST("/transactions", handler.CreateTransaction)
	protected.GET("/transactions", handler.GetTransactions)
	protected.PUT("/transactions/:id", handler.UpdateTransaction)
	protected.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotInput ledger.TransactionInput
		ledgerSvc := &mockLedgerService{
			addTransactionFn: func(_ string, in ledger.TransactionInput) (*ledger.Transaction, error) {
				gotInput = in
				return &ledger.Transaction{
					ID:         "tx-1",
					Type:       in.Type,
					Amount:     in.Amount,
					Category:   in.Category,
					OccurredAt: in.OccurredAt,
					Payments:   in.Payments,
				}, nil
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":80,"category":"groceries","occurred_at":"2024-06-01T10:00:00Z",
			  "payments":[{"account_id":"acc-1","amount":50},{"account_id":"acc-2","amount":30}]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotInput.Type != ledger.TransactionTypeExpense {
			t.Errorf("expected expense, got %s", gotInput.Type)
		}
		if len(gotInput.Payments) != 2 {
			t.Errorf("expected 2 payments, got %d", len(gotInput.Payments))
		}
		want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		if !gotInput.OccurredAt.Equal(want) {
			t.Errorf("expected occurred_at %v, got %v", want, gotInput.OccurredAt)
		}
	})

	t.Run("wall_clock timestamp is normalized", func(t *testing.T) {
		var gotInput ledger.TransactionInput
		ledgerSvc := &mockLedgerService{
			addTransactionFn: func(_ string, in ledger.TransactionInput) (*ledger.Transaction, error) {
				gotInput = in
				return &ledger.Transaction{ID: "tx-1"}, nil
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","amount":10,"category":"misc","occurred_at":"2024-06-01T10:00",
			  "payments":[{"account_id":"acc-1","amount":10}]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotInput.OccurredAt.Location() != time.UTC {
			t.Error("normalized timestamp should be in UTC")
		}
		if gotInput.OccurredAt.IsZero() {
			t.Error("normalized timestamp should not be zero")
		}
	})

	t.Run("returns 400 on bad timestamp", func(t *testing.T) {
		handler := NewTransactionHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","amount":10,"category":"misc","occurred_at":"yesterday",
			  "payments":[{"account_id":"acc-1","amount":10}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"transfer","amount":10,"category":"misc","occurred_at":"2024-06-01T10:00:00Z",
			  "payments":[{"account_id":"acc-1","amount":10}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 when validation rejects payments", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			addTransactionFn: func(_ string, _ ledger.TransactionInput) (*ledger.Transaction, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one payment with an account and a positive amount is required")
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":10,"category":"misc","occurred_at":"2024-06-01T10:00:00Z",
			  "payments":[{"account_id":"","amount":10}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	seededLedger := func() *ledger.Ledger {
		l := ledger.New()
		account := l.AddAccount(ledger.AccountInput{Name: "Checking", Type: ledger.AccountTypeBank})
		for i := 1; i <= 5; i++ {
			occurred := time.Date(2024, 6, i, 12, 0, 0, 0, time.UTC)
			if _, err := l.AddTransaction(ledger.TransactionInput{
				Type:       ledger.TransactionTypeIncome,
				Amount:     money.FromFloat(float64(i)),
				Category:   "misc",
				OccurredAt: occurred,
				Payments:   []ledger.Payment{{AccountID: account.ID, Amount: money.FromFloat(float64(i))}},
			}); err != nil {
				panic(err)
			}
		}
		return l
	}

	t.Run("returns transactions newest first", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			getLedgerFn: func(_ string) (*ledger.Ledger, error) { return seededLedger(), nil },
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 5 {
			t.Fatalf("expected 5 transactions, got %d", len(data))
		}
		first := data[0].(map[string]interface{})
		if first["occurred_at"] != "2024-06-05T12:00:00Z" {
			t.Errorf("expected newest transaction first, got %v", first["occurred_at"])
		}
	})

	t.Run("paginates", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			getLedgerFn: func(_ string) (*ledger.Ledger, error) { return seededLedger(), nil },
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?page=2&page_size=2", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(data))
		}
		if result["total_items"].(float64) != 5 {
			t.Errorf("expected 5 total items, got %v", result["total_items"])
		}
		if result["total_pages"].(float64) != 3 {
			t.Errorf("expected 3 total pages, got %v", result["total_pages"])
		}
	})

	t.Run("returns 400 on invalid page size", func(t *testing.T) {
		handler := NewTransactionHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("returns 200 and forwards patch", func(t *testing.T) {
		var gotID string
		var gotPatch ledger.TransactionPatch
		ledgerSvc := &mockLedgerService{
			updateTransactionFn: func(_, transactionID string, patch ledger.TransactionPatch) (*ledger.Transaction, error) {
				gotID = transactionID
				gotPatch = patch
				return &ledger.Transaction{ID: transactionID}, nil
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/tx-9",
			`{"category":"travel","amount":25,"payments":[{"account_id":"acc-1","amount":25}]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != "tx-9" {
			t.Errorf("expected tx-9, got %s", gotID)
		}
		if gotPatch.Category == nil || *gotPatch.Category != "travel" {
			t.Error("expected category patch to be set")
		}
		if gotPatch.Type != nil || gotPatch.Description != nil || gotPatch.OccurredAt != nil {
			t.Error("absent fields must stay nil in the patch")
		}
		if len(gotPatch.Payments) != 1 {
			t.Errorf("expected 1 payment in patch, got %d", len(gotPatch.Payments))
		}
	})

	t.Run("normalizes patched occurred_at", func(t *testing.T) {
		var gotPatch ledger.TransactionPatch
		ledgerSvc := &mockLedgerService{
			updateTransactionFn: func(_, id string, patch ledger.TransactionPatch) (*ledger.Transaction, error) {
				gotPatch = patch
				return &ledger.Transaction{ID: id}, nil
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/tx-9", `{"occurred_at":"2024-06-01T10:00:00Z"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotPatch.OccurredAt == nil || gotPatch.OccurredAt.IsZero() {
			t.Fatal("expected occurred_at in patch")
		}
	})

	t.Run("returns 400 on bad patched timestamp", func(t *testing.T) {
		handler := NewTransactionHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/tx-9", `{"occurred_at":"not-a-date"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on unknown transaction", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			updateTransactionFn: func(_, _ string, _ ledger.TransactionPatch) (*ledger.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/missing", `{"category":"travel"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deletedID string
		ledgerSvc := &mockLedgerService{
			deleteTransactionFn: func(_, transactionID string) error {
				deletedID = transactionID
				return nil
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/tx-5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deletedID != "tx-5" {
			t.Errorf("expected tx-5, got %s", deletedID)
		}
	})

	t.Run("returns 404 on unknown transaction", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			deleteTransactionFn: func(_, _ string) error {
				return apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 500 on persistence failure", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			deleteTransactionFn: func(_, _ string) error {
				return apperrors.Wrap(apperrors.ErrPersistence, fmt.Errorf("connection reset"))
			},
		}
		handler := NewTransactionHandler(ledgerSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/tx-5", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
