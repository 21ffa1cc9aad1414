package services

import (
	"fintrack/internal/ledger"
	"fintrack/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// LedgerStore is the persistence collaborator for per-user ledgers.
// Load returns an empty ledger when none is stored; Save rewrites the
// whole document as one unit.
type LedgerStore interface {
	Load(userID string) (*ledger.Ledger, error)
	Save(userID string, l *ledger.Ledger) error
}

// LedgerServicer defines the contract for ledger mutations. Every
// operation runs one serialized load-mutate-save cycle for the user.
type LedgerServicer interface {
	GetLedger(userID string) (*ledger.Ledger, error)
	AddAccount(userID string, in ledger.AccountInput) (*ledger.Account, error)
	DeleteAccount(userID, accountID string) error
	AddTransaction(userID string, in ledger.TransactionInput) (*ledger.Transaction, error)
	UpdateTransaction(userID, transactionID string, patch ledger.TransactionPatch) (*ledger.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	ClearLedger(userID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
