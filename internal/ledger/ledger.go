// Package ledger implements the per-user ledger: accounts, transactions
// split across accounts via payments, and the balance bookkeeping that
// keeps the two consistent. The ledger is a pure in-memory structure;
// loading and saving it is the service layer's concern.
package ledger

import (
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/money"
	"fintrack/internal/uuid"
)

// AccountType distinguishes bank accounts from cards.
type AccountType string

const (
	AccountTypeBank AccountType = "bank"
	AccountTypeCard AccountType = "card"
)

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Account is a named money container with a running balance. The
// balance mutates only through transaction application and reversal.
type Account struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Type    AccountType  `json:"type"`
	Balance money.Amount `json:"balance"`
	Color   string       `json:"color"`
}

// Payment is the portion of a transaction's total attributed to one
// account. Payments are owned by their transaction and are not
// independently addressable.
type Payment struct {
	AccountID string       `json:"account_id"`
	Amount    money.Amount `json:"amount"`
}

// Transaction is a dated income or expense event split across one or
// more accounts. Its amount always equals the sum of its payments.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      money.Amount    `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payments    []Payment       `json:"payments"`
}

// Ledger is the complete financial state of one user.
type Ledger struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{Accounts: []Account{}, Transactions: []Transaction{}}
}

// AccountInput carries the caller-supplied fields for a new account.
type AccountInput struct {
	Name    string
	Type    AccountType
	Balance money.Amount
	Color   string
}

// TransactionInput carries the caller-supplied fields for a new
// transaction. OccurredAt must already be a normalized absolute instant.
type TransactionInput struct {
	Type        TransactionType
	Amount      money.Amount
	Category    string
	Description string
	OccurredAt  time.Time
	Payments    []Payment
}

// TransactionPatch holds the optional fields of a transaction update.
// Nil fields keep the existing value; a non-nil Payments slice replaces
// the payment split entirely.
type TransactionPatch struct {
	Type        *TransactionType
	Amount      *money.Amount
	Category    *string
	Description *string
	OccurredAt  *time.Time
	Payments    []Payment
}

// AddAccount assigns a fresh id, appends the account, and returns it.
// It has no effect on other accounts or on any transaction.
func (l *Ledger) AddAccount(in AccountInput) *Account {
	account := Account{
		ID:      uuid.New(),
		Name:    in.Name,
		Type:    in.Type,
		Balance: in.Balance,
		Color:   in.Color,
	}
	l.Accounts = append(l.Accounts, account)
	return &l.Accounts[len(l.Accounts)-1]
}

// Account returns a pointer to the account with the given id, or nil.
func (l *Ledger) Account(id string) *Account {
	for i := range l.Accounts {
		if l.Accounts[i].ID == id {
			return &l.Accounts[i]
		}
	}
	return nil
}

// DeleteAccount removes the account with the given id. Transactions and
// their payments are left untouched; payments referencing the removed
// account become dangling and are skipped by balance bookkeeping.
// Unknown ids are a silent no-op.
func (l *Ledger) DeleteAccount(id string) {
	for i := range l.Accounts {
		if l.Accounts[i].ID == id {
			l.Accounts = append(l.Accounts[:i], l.Accounts[i+1:]...)
			return
		}
	}
}

// Transaction returns a pointer to the transaction with the given id,
// or nil.
func (l *Ledger) Transaction(id string) *Transaction {
	for i := range l.Transactions {
		if l.Transactions[i].ID == id {
			return &l.Transactions[i]
		}
	}
	return nil
}

// AddTransaction validates the input, stores the transaction, and
// applies its payment effects to every referenced account that exists.
// The stored amount is the validated payment total, not the raw input.
// Validation failures happen before any mutation.
func (l *Ledger) AddTransaction(in TransactionInput) (*Transaction, error) {
	payments, total, err := normalizePayments(in.Payments, in.Amount)
	if err != nil {
		return nil, err
	}
	if in.OccurredAt.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "occurred_at is required")
	}

	tx := Transaction{
		ID:          uuid.New(),
		Type:        in.Type,
		Amount:      total,
		Category:    in.Category,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
		Payments:    payments,
	}

	l.Transactions = append(l.Transactions, tx)
	l.apply(&tx)

	return &l.Transactions[len(l.Transactions)-1], nil
}

// DeleteTransaction reverses the transaction's payment effects on every
// account that still exists, then removes the record.
func (l *Ledger) DeleteTransaction(id string) error {
	for i := range l.Transactions {
		if l.Transactions[i].ID == id {
			l.reverse(&l.Transactions[i])
			l.Transactions = append(l.Transactions[:i], l.Transactions[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrTransactionNotFound
}

// UpdateTransaction merges the patch into the stored transaction,
// reverses the old payment effects, and applies the new ones, so an
// account touched by both splits sees only the net change. The merged
// transaction is validated before anything mutates.
func (l *Ledger) UpdateTransaction(id string, patch TransactionPatch) (*Transaction, error) {
	existing := l.Transaction(id)
	if existing == nil {
		return nil, apperrors.ErrTransactionNotFound
	}

	merged := *existing
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.OccurredAt != nil {
		merged.OccurredAt = *patch.OccurredAt
	}

	if patch.Payments != nil || patch.Amount != nil {
		rawPayments := existing.Payments
		if patch.Payments != nil {
			rawPayments = patch.Payments
		}
		amount := existing.Amount
		if patch.Amount != nil {
			amount = *patch.Amount
		}
		payments, total, err := normalizePayments(rawPayments, amount)
		if err != nil {
			return nil, err
		}
		merged.Payments = payments
		merged.Amount = total
	}

	l.reverse(existing)
	*existing = merged
	l.apply(existing)

	return existing, nil
}

// Clear resets the ledger to empty. No balance reversal is needed since
// accounts and transactions are discarded together.
func (l *Ledger) Clear() {
	l.Accounts = []Account{}
	l.Transactions = []Transaction{}
}

// normalizePayments drops entries with no account or a non-positive
// amount, requires at least one to survive, and checks the surviving
// total against the declared amount within money.Tolerance. Returns the
// filtered payments and their exact total.
func normalizePayments(raw []Payment, declared money.Amount) ([]Payment, money.Amount, error) {
	payments := make([]Payment, 0, len(raw))
	total := money.Zero()
	for _, p := range raw {
		if p.AccountID == "" || !p.Amount.IsPositive() {
			continue
		}
		payments = append(payments, p)
		total = total.Add(p.Amount)
	}

	if len(payments) == 0 {
		return nil, money.Zero(), apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one payment with an account and a positive amount is required")
	}

	if !total.WithinTolerance(declared) {
		return nil, money.Zero(), apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("payment total %s does not match transaction amount %s", total, declared))
	}

	return payments, total, nil
}

// apply adds the transaction's payment effects to every referenced
// account that exists. Payments to unknown accounts are kept in the
// record but have no balance effect.
func (l *Ledger) apply(tx *Transaction) {
	for _, p := range tx.Payments {
		account := l.Account(p.AccountID)
		if account == nil {
			continue
		}
		if tx.Type == TransactionTypeIncome {
			account.Balance = account.Balance.Add(p.Amount)
		} else {
			account.Balance = account.Balance.Sub(p.Amount)
		}
	}
}

// reverse undoes apply symmetrically.
func (l *Ledger) reverse(tx *Transaction) {
	for _, p := range tx.Payments {
		account := l.Account(p.AccountID)
		if account == nil {
			continue
		}
		if tx.Type == TransactionTypeIncome {
			account.Balance = account.Balance.Sub(p.Amount)
		} else {
			account.Balance = account.Balance.Add(p.Amount)
		}
	}
}
