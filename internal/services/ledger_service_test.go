package services

import (
	"sync"
	"testing"
	"time"

	"fintrack/internal/ledger"
	"fintrack/internal/money"
	"fintrack/internal/testutil"
)

func setupLedgerService(t *testing.T) (LedgerServicer, string, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	svc := NewLedgerService(NewLedgerStore(db))
	return svc, user.ID, func() { testutil.TeardownTestDB(t, db) }
}

func TestGetLedger(t *testing.T) {
	t.Run("empty_for_new_user", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		l, err := svc.GetLedger(userID)
		testutil.AssertNoError(t, err)

		if len(l.Accounts) != 0 || len(l.Transactions) != 0 {
			t.Error("new user should start with an empty ledger")
		}
		if l.Accounts == nil || l.Transactions == nil {
			t.Error("ledger slices should be non-nil")
		}
	})

	t.Run("returns_persisted_state", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		created, err := svc.AddAccount(userID, ledger.AccountInput{
			Name:    "Checking",
			Type:    ledger.AccountTypeBank,
			Balance: money.FromFloat(500),
		})
		testutil.AssertNoError(t, err)

		l, err := svc.GetLedger(userID)
		testutil.AssertNoError(t, err)

		if len(l.Accounts) != 1 || l.Accounts[0].ID != created.ID {
			t.Fatal("persisted account should be visible on reload")
		}
		if !l.Accounts[0].Balance.Equal(money.FromFloat(500)) {
			t.Errorf("expected balance 500, got %s", l.Accounts[0].Balance)
		}
	})
}

func TestLedgerServiceTransactions(t *testing.T) {
	t.Run("add_persists_balance_effect", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		account, err := svc.AddAccount(userID, ledger.AccountInput{
			Name: "Checking", Type: ledger.AccountTypeBank, Balance: money.FromFloat(100),
		})
		testutil.AssertNoError(t, err)

		_, err = svc.AddTransaction(userID, testutil.TestTransactionInput(account.ID, ledger.TransactionTypeIncome, 50))
		testutil.AssertNoError(t, err)

		l, err := svc.GetLedger(userID)
		testutil.AssertNoError(t, err)

		if !l.Accounts[0].Balance.Equal(money.FromFloat(150)) {
			t.Errorf("expected balance 150, got %s", l.Accounts[0].Balance)
		}
		if len(l.Transactions) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(l.Transactions))
		}
	})

	t.Run("invalid_add_persists_nothing", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		account, err := svc.AddAccount(userID, ledger.AccountInput{
			Name: "Checking", Type: ledger.AccountTypeBank, Balance: money.FromFloat(100),
		})
		testutil.AssertNoError(t, err)

		in := ledger.TransactionInput{
			Type:       ledger.TransactionTypeExpense,
			Amount:     money.FromFloat(999),
			Category:   "misc",
			OccurredAt: time.Now().UTC(),
			Payments:   []ledger.Payment{{AccountID: account.ID, Amount: money.FromFloat(10)}},
		}
		_, err = svc.AddTransaction(userID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		l, err := svc.GetLedger(userID)
		testutil.AssertNoError(t, err)
		if len(l.Transactions) != 0 {
			t.Error("failed add must not be persisted")
		}
		if !l.Accounts[0].Balance.Equal(money.FromFloat(100)) {
			t.Errorf("balance should be untouched, got %s", l.Accounts[0].Balance)
		}
	})

	t.Run("delete_reverses_and_persists", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		account, err := svc.AddAccount(userID, ledger.AccountInput{
			Name: "Checking", Type: ledger.AccountTypeBank, Balance: money.FromFloat(100),
		})
		testutil.AssertNoError(t, err)

		tx, err := svc.AddTransaction(userID, testutil.TestTransactionInput(account.ID, ledger.TransactionTypeExpense, 40))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteTransaction(userID, tx.ID))

		l, err := svc.GetLedger(userID)
		testutil.AssertNoError(t, err)
		if !l.Accounts[0].Balance.Equal(money.FromFloat(100)) {
			t.Errorf("expected restored balance 100, got %s", l.Accounts[0].Balance)
		}
	})

	t.Run("delete_unknown_transaction", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		err := svc.DeleteTransaction(userID, "missing")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("update_persists_net_change", func(t *testing.T) {
		svc, userID, teardown := setupLedgerService(t)
		defer teardown()

		account, err := svc.AddAccount(userID, ledger.AccountInput{
			Name: "Checking", Type: ledger.AccountTypeBank, Balance: money.FromFloat(100),
		})
		testutil.AssertNoError(t, err)

		tx, err := svc.AddTransaction(userID, testutil.TestTransactionInput(account.ID, ledger.TransactionTypeIncome, 50))
		testutil.AssertNoError(t, err)

		amount := money.FromFloat(20)
		_, err = svc.UpdateTransaction(userID, tx.ID, ledger.TransactionPatch{
			Amount:   &amount,
			Payments: []ledger.Payment{{AccountID: account.ID, Amount: amount}},
		})
		testutil.AssertNoError(t, err)

		l, err := svc.GetLedger(userID)
		testutil.AssertNoError(t, err)
		if !l.Accounts[0].Balance.Equal(money.FromFloat(120)) {
			t.Errorf("expected balance 120, got %s", l.Accounts[0].Balance)
		}
	})
}

func TestClearLedger(t *testing.T) {
	svc, userID, teardown := setupLedgerService(t)
	defer teardown()

	account, err := svc.AddAccount(userID, ledger.AccountInput{
		Name: "Checking", Type: ledger.AccountTypeBank, Balance: money.FromFloat(100),
	})
	testutil.AssertNoError(t, err)

	_, err = svc.AddTransaction(userID, testutil.TestTransactionInput(account.ID, ledger.TransactionTypeIncome, 10))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.ClearLedger(userID))

	l, err := svc.GetLedger(userID)
	testutil.AssertNoError(t, err)
	if len(l.Accounts) != 0 || len(l.Transactions) != 0 {
		t.Error("cleared ledger should be empty")
	}
}

func TestLedgerServiceUserIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewLedgerService(NewLedgerStore(db))

	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)

	_, err := svc.AddAccount(alice.ID, ledger.AccountInput{
		Name: "Alice Checking", Type: ledger.AccountTypeBank, Balance: money.FromFloat(100),
	})
	testutil.AssertNoError(t, err)

	l, err := svc.GetLedger(bob.ID)
	testutil.AssertNoError(t, err)
	if len(l.Accounts) != 0 {
		t.Error("one user's accounts must not leak into another's ledger")
	}
}

func TestLedgerServiceConcurrentMutations(t *testing.T) {
	svc, userID, teardown := setupLedgerService(t)
	defer teardown()

	account, err := svc.AddAccount(userID, ledger.AccountInput{
		Name: "Checking", Type: ledger.AccountTypeBank, Balance: money.Zero(),
	})
	testutil.AssertNoError(t, err)

	const workers = 10
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.AddTransaction(userID, testutil.TestTransactionInput(account.ID, ledger.TransactionTypeIncome, 1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		testutil.AssertNoError(t, err)
	}

	l, err := svc.GetLedger(userID)
	testutil.AssertNoError(t, err)

	if len(l.Transactions) != workers {
		t.Errorf("expected %d transactions, got %d", workers, len(l.Transactions))
	}
	if !l.Accounts[0].Balance.Equal(money.FromFloat(workers)) {
		t.Errorf("expected balance %d, got %s", workers, l.Accounts[0].Balance)
	}
}
