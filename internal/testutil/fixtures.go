package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/money"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SeedTestLedger stores the given ledger as the user's persisted record.
func SeedTestLedger(t *testing.T, db *gorm.DB, userID string, l *ledger.Ledger) {
	t.Helper()

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("failed to marshal test ledger: %v", err)
	}

	record := &models.LedgerRecord{
		UserID: userID,
		Data:   data,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to seed test ledger: %v", err)
	}
}

// NewTestLedgerWithAccount builds an in-memory ledger containing one bank
// account with the given balance, returning the ledger and the account.
func NewTestLedgerWithAccount(t *testing.T, balance float64) (*ledger.Ledger, *ledger.Account) {
	t.Helper()

	l := ledger.New()
	account := l.AddAccount(ledger.AccountInput{
		Name:    fmt.Sprintf("Test Account %d", nextID()),
		Type:    ledger.AccountTypeBank,
		Balance: money.FromFloat(balance),
	})
	return l, account
}

// TestTransactionInput builds a valid single-payment transaction input
// against the given account.
func TestTransactionInput(accountID string, txType ledger.TransactionType, amount float64) ledger.TransactionInput {
	return ledger.TransactionInput{
		Type:       txType,
		Amount:     money.FromFloat(amount),
		Category:   "general",
		OccurredAt: time.Now().UTC(),
		Payments: []ledger.Payment{
			{AccountID: accountID, Amount: money.FromFloat(amount)},
		},
	}
}
