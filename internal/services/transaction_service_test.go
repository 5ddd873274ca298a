package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dompet/internal/events"
	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/testutil"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransaction(_ context.Context, event *events.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) actions() []events.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Action, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("valid_categorized_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := NewTransactionService(db, pub)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		txn, err := svc.CreateTransaction(ctx, user.ID, TransactionInput{
			AccountID:   account.ID,
			CategoryID:  &category.ID,
			Type:        models.TransactionTypeExpense,
			Amount:      45000,
			Description: strPtr("  lunch  "),
			Date:        time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if txn.Amount != 45000 || txn.Type != models.TransactionTypeExpense {
			t.Errorf("unexpected transaction %+v", txn)
		}
		if txn.Description == nil || *txn.Description != "lunch" {
			t.Errorf("expected trimmed description, got %v", txn.Description)
		}
		if txn.Category == nil || txn.Category.ID != category.ID {
			t.Error("expected category to be preloaded")
		}
		if txn.Account == nil || txn.Account.ID != account.ID {
			t.Error("expected account to be preloaded")
		}
		if got := txn.Date.Format("2006-01-02"); got != "2024-03-15" {
			t.Errorf("expected date 2024-03-15, got %s", got)
		}

		if acts := pub.actions(); len(acts) != 1 || acts[0] != events.ActionCreated {
			t.Errorf("expected one created event, got %v", acts)
		}
		if pub.events[0].Date != "2024-03-15" || pub.events[0].CategoryID == nil {
			t.Errorf("unexpected event %+v", pub.events[0])
		}
	})

	t.Run("uncategorized_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		txn, err := svc.CreateTransaction(ctx, user.ID, TransactionInput{
			AccountID:  account.ID,
			CategoryID: strPtr(""),
			Type:       models.TransactionTypeIncome,
			Amount:     1,
		})
		testutil.AssertNoError(t, err)
		if txn.CategoryID != nil {
			t.Error("expected empty category id to mean uncategorized")
		}
		if txn.Date.IsZero() {
			t.Error("expected date to default to today")
		}
	})

	t.Run("publish_failure_does_not_fail_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, &recordingPublisher{err: errors.New("broker down")})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateTransaction(ctx, user.ID, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: 10,
		})
		testutil.AssertNoError(t, err)
	})
}

func TestCreateTransactionValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	pub := &recordingPublisher{}
	svc := NewTransactionService(db, pub)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	foreignAccount := testutil.CreateTestAccount(t, db, other.ID)
	income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	foreignCategory := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	tests := []struct {
		name     string
		input    TransactionInput
		wantCode string
	}{
		{
			name:     "unknown_type",
			input:    TransactionInput{AccountID: account.ID, Type: "transfer", Amount: 10},
			wantCode: "INVALID_TRANSACTION_TYPE",
		},
		{
			name:     "zero_amount",
			input:    TransactionInput{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: 0},
			wantCode: "INVALID_INPUT",
		},
		{
			name:     "negative_amount",
			input:    TransactionInput{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: -5},
			wantCode: "INVALID_INPUT",
		},
		{
			name:     "missing_account",
			input:    TransactionInput{Type: models.TransactionTypeExpense, Amount: 5},
			wantCode: "INVALID_INPUT",
		},
		{
			name:     "other_users_account",
			input:    TransactionInput{AccountID: foreignAccount.ID, Type: models.TransactionTypeExpense, Amount: 5},
			wantCode: "ACCOUNT_NOT_FOUND",
		},
		{
			name:     "other_users_category",
			input:    TransactionInput{AccountID: account.ID, CategoryID: &foreignCategory.ID, Type: models.TransactionTypeExpense, Amount: 5},
			wantCode: "CATEGORY_NOT_FOUND",
		},
		{
			name:     "category_type_mismatch",
			input:    TransactionInput{AccountID: account.ID, CategoryID: &income.ID, Type: models.TransactionTypeExpense, Amount: 5},
			wantCode: "CATEGORY_TYPE_MISMATCH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, user.ID, tt.input)
			testutil.AssertAppError(t, err, tt.wantCode)
		})
	}

	if len(pub.actions()) != 0 {
		t.Errorf("rejected writes must not publish, got %v", pub.actions())
	}
}

func TestGetUserTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	bank := testutil.CreateTestAccount(t, db, user.ID)
	cash := testutil.CreateTestAccount(t, db, user.ID)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	foreign := testutil.CreateTestAccount(t, db, other.ID)

	testutil.CreateTestTransactionOn(t, db, user.ID, bank.ID, nil, models.TransactionTypeIncome, 500000, testutil.Day(2024, 1, 1))
	testutil.CreateTestTransactionOn(t, db, user.ID, bank.ID, &food.ID, models.TransactionTypeExpense, 20000, testutil.Day(2024, 1, 15))
	testutil.CreateTestTransactionOn(t, db, user.ID, cash.ID, &food.ID, models.TransactionTypeExpense, 5000, testutil.Day(2024, 2, 3))
	latest := testutil.CreateTestTransactionOn(t, db, user.ID, cash.ID, nil, models.TransactionTypeExpense, 150, testutil.Day(2024, 2, 20))
	testutil.CreateTestTransactionOn(t, db, other.ID, foreign.ID, nil, models.TransactionTypeIncome, 7, testutil.Day(2024, 2, 21))

	t.Run("newest_first", func(t *testing.T) {
		res, err := svc.GetUserTransactions(ctx, user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if res.TotalItems != 4 {
			t.Fatalf("expected 4 transactions, got %d", res.TotalItems)
		}
		if res.Data[0].ID != latest.ID {
			t.Errorf("expected newest transaction first")
		}
		for i := 1; i < len(res.Data); i++ {
			if res.Data[i].Date.After(res.Data[i-1].Date) {
				t.Errorf("transactions not sorted by date descending at %d", i)
			}
		}
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := svc.GetUserTransactions(ctx, user.ID, pagination.PageRequest{Page: 2, PageSize: 3}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if len(res.Data) != 1 || res.TotalPages != 2 || res.HasNext {
			t.Errorf("unexpected page: %d items, %d pages, has_next=%v", len(res.Data), res.TotalPages, res.HasNext)
		}
	})

	t.Run("filters", func(t *testing.T) {
		from := testutil.Day(2024, 1, 10)
		to := testutil.Day(2024, 2, 10)
		expense := models.TransactionTypeExpense
		minAmount := int64(1000)

		tests := []struct {
			name   string
			filter TransactionFilter
			want   int64
		}{
			{name: "date_range", filter: TransactionFilter{FromDate: &from, ToDate: &to}, want: 2},
			{name: "type", filter: TransactionFilter{Type: &expense}, want: 3},
			{name: "category", filter: TransactionFilter{CategoryID: &food.ID}, want: 2},
			{name: "account", filter: TransactionFilter{AccountID: &cash.ID}, want: 2},
			{name: "min_amount", filter: TransactionFilter{MinAmount: &minAmount}, want: 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res, err := svc.GetUserTransactions(ctx, user.ID, pagination.PageRequest{}, tt.filter)
				testutil.AssertNoError(t, err)
				if res.TotalItems != tt.want {
					t.Errorf("expected %d, got %d", tt.want, res.TotalItems)
				}
			})
		}
	})

	t.Run("inverted_date_range", func(t *testing.T) {
		from := testutil.Day(2024, 3, 1)
		to := testutil.Day(2024, 1, 1)
		_, err := svc.GetUserTransactions(ctx, user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})
}

func TestGetAccountTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	bank := testutil.CreateTestAccount(t, db, user.ID)
	cash := testutil.CreateTestAccount(t, db, user.ID)

	testutil.CreateTestTransaction(t, db, user.ID, bank.ID, models.TransactionTypeIncome, 100)
	testutil.CreateTestTransaction(t, db, user.ID, cash.ID, models.TransactionTypeIncome, 100)

	t.Run("scoped_to_account", func(t *testing.T) {
		res, err := svc.GetAccountTransactions(ctx, user.ID, bank.ID, pagination.PageRequest{}, TransactionFilter{AccountID: &cash.ID})
		testutil.AssertNoError(t, err)
		if res.TotalItems != 1 || res.Data[0].AccountID != bank.ID {
			t.Errorf("expected only the bank account's transaction, got %d", res.TotalItems)
		}
	})

	t.Run("other_users_account", func(t *testing.T) {
		_, err := svc.GetAccountTransactions(ctx, other.ID, bank.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	pub := &recordingPublisher{}
	svc := NewTransactionService(db, pub)
	user := testutil.CreateTestUser(t, db)
	bank := testutil.CreateTestAccount(t, db, user.ID)
	cash := testutil.CreateTestAccount(t, db, user.ID)
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	txn := testutil.CreateTestTransaction(t, db, user.ID, bank.ID, models.TransactionTypeExpense, 100)

	t.Run("move_and_retype", func(t *testing.T) {
		updated, err := svc.UpdateTransaction(ctx, user.ID, txn.ID, TransactionInput{
			AccountID:  cash.ID,
			CategoryID: &salary.ID,
			Type:       models.TransactionTypeIncome,
			Amount:     250,
			Date:       testutil.Day(2024, 5, 1),
		})
		testutil.AssertNoError(t, err)

		if updated.AccountID != cash.ID || updated.Type != models.TransactionTypeIncome || updated.Amount != 250 {
			t.Errorf("unexpected transaction %+v", updated)
		}
		if updated.Category == nil || updated.Category.ID != salary.ID {
			t.Error("expected new category to be preloaded")
		}

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("update must not duplicate rows, got %d", count)
		}
	})

	t.Run("mismatched_category", func(t *testing.T) {
		_, err := svc.UpdateTransaction(ctx, user.ID, txn.ID, TransactionInput{
			AccountID: bank.ID, CategoryID: &salary.ID, Type: models.TransactionTypeExpense, Amount: 1,
		})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.UpdateTransaction(ctx, user.ID, "0190a6b2-0000-7000-8000-000000000000", TransactionInput{
			AccountID: bank.ID, Type: models.TransactionTypeExpense, Amount: 1,
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	if acts := pub.actions(); len(acts) != 1 || acts[0] != events.ActionUpdated {
		t.Errorf("expected one updated event, got %v", acts)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	pub := &recordingPublisher{}
	svc := NewTransactionService(db, pub)
	accounts := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)
	txn := testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, 400)

	t.Run("other_user", func(t *testing.T) {
		err := svc.DeleteTransaction(ctx, other.ID, txn.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("restores_balance", func(t *testing.T) {
		before, err := accounts.GetAccountByID(ctx, user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if before.Balance != 600 {
			t.Fatalf("expected balance 600 before delete, got %d", before.Balance)
		}

		testutil.AssertNoError(t, svc.DeleteTransaction(ctx, user.ID, txn.ID))

		after, err := accounts.GetAccountByID(ctx, user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if after.Balance != 1000 {
			t.Errorf("expected balance 1000 after delete, got %d", after.Balance)
		}

		_, err = svc.GetTransactionByID(ctx, user.ID, txn.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	if acts := pub.actions(); len(acts) != 1 || acts[0] != events.ActionDeleted {
		t.Errorf("expected one deleted event, got %v", acts)
	}
}

func TestLoadRecentTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)

	for d := 1; d <= 7; d++ {
		testutil.CreateTestTransactionOn(t, db, user.ID, account.ID, nil, models.TransactionTypeIncome, int64(d), testutil.Day(2024, 4, d))
	}

	recent, err := loadRecentTransactions(db, user.ID, 3)
	testutil.AssertNoError(t, err)
	if len(recent) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(recent))
	}
	if recent[0].Amount != 7 || recent[2].Amount != 5 {
		t.Errorf("expected the three latest, got %d..%d", recent[0].Amount, recent[2].Amount)
	}

	defaulted, err := loadRecentTransactions(db, user.ID, 0)
	testutil.AssertNoError(t, err)
	if len(defaulted) != 5 {
		t.Errorf("expected default limit of 5, got %d", len(defaulted))
	}
}
