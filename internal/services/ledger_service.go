package services

import (
	"sync"

	"fintrack/internal/ledger"
)

// ledgerService runs every mutation as one load-mutate-save cycle over
// the user's ledger document. A per-user mutex serializes concurrent
// requests for the same user so a slow writer cannot silently discard
// another request's changes. Coordination is in-process only.
type ledgerService struct {
	store LedgerStore
	locks sync.Map // userID -> *sync.Mutex
}

// NewLedgerService creates a new LedgerServicer on top of a store.
func NewLedgerService(store LedgerStore) LedgerServicer {
	return &ledgerService{store: store}
}

func (s *ledgerService) userLock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// withLedger loads the user's ledger, applies fn, and saves the result.
// Nothing is written when fn fails, so invalid input never leaves a
// partially applied transaction behind.
func (s *ledgerService) withLedger(userID string, fn func(*ledger.Ledger) error) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	l, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return s.store.Save(userID, l)
}

// GetLedger returns a consistent snapshot of the user's ledger.
func (s *ledgerService) GetLedger(userID string) (*ledger.Ledger, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.store.Load(userID)
}

// AddAccount creates an account in the user's ledger.
func (s *ledgerService) AddAccount(userID string, in ledger.AccountInput) (*ledger.Account, error) {
	var created ledger.Account
	err := s.withLedger(userID, func(l *ledger.Ledger) error {
		created = *l.AddAccount(in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteAccount removes an account. Unknown ids are a tolerated no-op;
// transactions referencing the account are left intact.
func (s *ledgerService) DeleteAccount(userID, accountID string) error {
	return s.withLedger(userID, func(l *ledger.Ledger) error {
		l.DeleteAccount(accountID)
		return nil
	})
}

// AddTransaction validates and stores a transaction, applying its
// payment effects to the referenced account balances.
func (s *ledgerService) AddTransaction(userID string, in ledger.TransactionInput) (*ledger.Transaction, error) {
	var created ledger.Transaction
	err := s.withLedger(userID, func(l *ledger.Ledger) error {
		tx, err := l.AddTransaction(in)
		if err != nil {
			return err
		}
		created = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTransaction applies a patch, reversing the old payment effects
// and applying the new ones.
func (s *ledgerService) UpdateTransaction(userID, transactionID string, patch ledger.TransactionPatch) (*ledger.Transaction, error) {
	var updated ledger.Transaction
	err := s.withLedger(userID, func(l *ledger.Ledger) error {
		tx, err := l.UpdateTransaction(transactionID, patch)
		if err != nil {
			return err
		}
		updated = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction reverses and removes a transaction.
func (s *ledgerService) DeleteTransaction(userID, transactionID string) error {
	return s.withLedger(userID, func(l *ledger.Ledger) error {
		return l.DeleteTransaction(transactionID)
	})
}

// ClearLedger resets the user's ledger to empty.
func (s *ledgerService) ClearLedger(userID string) error {
	return s.withLedger(userID, func(l *ledger.Ledger) error {
		l.Clear()
		return nil
	})
}
