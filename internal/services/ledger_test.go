package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/storage"
)

// capturePublisher records published events in memory.
type capturePublisher struct {
	posted   []*events.TransactionPostedMessage
	breached []*events.BudgetBreachedMessage
}

func (p *capturePublisher) PublishTransactionPosted(_ context.Context, msg *events.TransactionPostedMessage) error {
	p.posted = append(p.posted, msg)
	return nil
}

func (p *capturePublisher) PublishBudgetBreached(_ context.Context, msg *events.BudgetBreachedMessage) error {
	p.breached = append(p.breached, msg)
	return nil
}

type ledgerEnv struct {
	store     *storage.Repository
	ledger    *LedgerService
	publisher *capturePublisher
	now       time.Time
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	store, err := storage.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	publisher := &capturePublisher{}
	env := &ledgerEnv{
		store:     store,
		publisher: publisher,
		now:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	env.ledger = NewLedgerService(store, publisher)
	env.ledger.now = func() time.Time { return env.now }

	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, core.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "h", CreatedAt: env.now,
	}))
	require.NoError(t, store.CreateUser(ctx, core.User{
		ID: "u2", Username: "bob", Email: "bob@example.com", PasswordHash: "h", CreatedAt: env.now,
	}))
	require.NoError(t, store.CreateAccount(ctx, core.Account{
		ID: "a1", UserID: "u1", Name: "checking", Type: core.AccountBank, CreatedAt: env.now,
	}))
	require.NoError(t, store.CreateAccount(ctx, core.Account{
		ID: "a2", UserID: "u2", Name: "other", Type: core.AccountBank, CreatedAt: env.now,
	}))
	require.NoError(t, store.CreateCategory(ctx, core.Category{
		ID: "c1", UserID: "u1", Name: "Groceries", CreatedAt: env.now,
	}))
	require.NoError(t, store.CreateCategory(ctx, core.Category{
		ID: "c2", UserID: "u2", Name: "Foreign", CreatedAt: env.now,
	}))
	return env
}

func (env *ledgerEnv) budget(t *testing.T, id string, cents int64, from, to time.Time) {
	t.Helper()
	require.NoError(t, env.store.CreateBudget(context.Background(), core.Budget{
		ID: id, UserID: "u1", CategoryID: "c1",
		Amount:    core.Money{Cents: cents},
		StartDate: from, EndDate: to, CreatedAt: env.now,
	}))
}

func (env *ledgerEnv) spend(t *testing.T, cents int64) core.Transaction {
	t.Helper()
	tx, err := env.ledger.PostTransaction(context.Background(), "u1", PostTransactionInput{
		Type:        core.Expense,
		AmountCents: cents,
		CategoryID:  "c1",
		AccountID:   "a1",
	})
	require.NoError(t, err)
	return tx
}

func TestPostTransactionUpdatesBalance(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.ledger.PostTransaction(ctx, "u1", PostTransactionInput{
		Type: core.Income, AmountCents: 10000, CategoryID: "c1", AccountID: "a1",
	})
	require.NoError(t, err)
	env.spend(t, 2500)

	account, err := env.store.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(7500), account.Balance.Cents)

	require.Len(t, env.publisher.posted, 2)
	assert.Equal(t, "u1", env.publisher.posted[0].UserID)
}

func TestPostTransactionValidation(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   PostTransactionInput
		want error
	}{
		{
			name: "zero amount",
			in:   PostTransactionInput{Type: core.Expense, AmountCents: 0, CategoryID: "c1", AccountID: "a1"},
			want: core.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			in:   PostTransactionInput{Type: core.Expense, AmountCents: -5, CategoryID: "c1", AccountID: "a1"},
			want: core.ErrInvalidAmount,
		},
		{
			name: "bad type",
			in:   PostTransactionInput{Type: "transfer", AmountCents: 100, CategoryID: "c1", AccountID: "a1"},
			want: core.ErrInvalidTransactionType,
		},
		{
			name: "foreign account",
			in:   PostTransactionInput{Type: core.Expense, AmountCents: 100, CategoryID: "c1", AccountID: "a2"},
			want: core.ErrNotFound,
		},
		{
			name: "foreign category",
			in:   PostTransactionInput{Type: core.Expense, AmountCents: 100, CategoryID: "c2", AccountID: "a1"},
			want: core.ErrNotFound,
		},
		{
			name: "missing account",
			in:   PostTransactionInput{Type: core.Expense, AmountCents: 100, CategoryID: "c1", AccountID: "nope"},
			want: core.ErrNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.ledger.PostTransaction(ctx, "u1", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	txs, err := env.ledger.ListTransactions(ctx, "u1", storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestBudgetBreachNotifications(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.budget(t, "b1", 10000, env.now.AddDate(0, 0, -7), env.now.AddDate(0, 0, 7))

	// Two postings of 40.00 stay under the 100.00 ceiling.
	env.spend(t, 4000)
	env.spend(t, 4000)

	budget, err := env.store.GetBudget(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, budget.Notifications)

	// The third posting pushes the total to 120.00.
	env.spend(t, 4000)

	budget, err = env.store.GetBudget(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, budget.Notifications, 1)
	n := budget.Notifications[0]
	assert.Equal(t, "Budget exceeded for Groceries", n.Message)
	assert.Equal(t, int64(2000), n.ExceededAmount.Cents)
	assert.False(t, n.IsRead)

	// Every further over-budget expense appends another notification.
	env.spend(t, 1000)

	budget, err = env.store.GetBudget(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, budget.Notifications, 2)
	assert.Equal(t, int64(3000), budget.Notifications[1].ExceededAmount.Cents)

	require.Len(t, env.publisher.breached, 2)
	assert.Equal(t, int64(2000), env.publisher.breached[0].ExceededCents)
	assert.Equal(t, int64(3000), env.publisher.breached[1].ExceededCents)
}

func TestIncomeNeverTriggersBudget(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.budget(t, "b1", 100, env.now.AddDate(0, 0, -7), env.now.AddDate(0, 0, 7))

	_, err := env.ledger.PostTransaction(ctx, "u1", PostTransactionInput{
		Type: core.Income, AmountCents: 1000000, CategoryID: "c1", AccountID: "a1",
	})
	require.NoError(t, err)

	budget, err := env.store.GetBudget(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, budget.Notifications)
	assert.Empty(t, env.publisher.breached)
}

func TestInactiveBudgetNotEvaluated(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	// Window ended a month before now.
	env.budget(t, "b1", 100, env.now.AddDate(0, -2, 0), env.now.AddDate(0, -1, 0))

	env.spend(t, 100000)

	budget, err := env.store.GetBudget(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, budget.Notifications)
}

func TestCreateBudget(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	budget, err := env.ledger.CreateBudget(ctx, "u1", CreateBudgetInput{
		CategoryID:  "c1",
		AmountCents: 5000,
		StartDate:   env.now,
		EndDate:     env.now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, budget.ID)

	_, err = env.ledger.CreateBudget(ctx, "u1", CreateBudgetInput{
		CategoryID:  "c2",
		AmountCents: 5000,
		StartDate:   env.now,
		EndDate:     env.now.AddDate(0, 1, 0),
	})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = env.ledger.CreateBudget(ctx, "u1", CreateBudgetInput{
		CategoryID:  "c1",
		AmountCents: 5000,
		StartDate:   env.now.AddDate(0, 1, 0),
		EndDate:     env.now,
	})
	assert.ErrorIs(t, err, core.ErrInvalidWindow)
}

func TestBudgetStatus(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.budget(t, "active", 10000, env.now.AddDate(0, 0, -7), env.now.AddDate(0, 0, 7))
	env.budget(t, "expired", 10000, env.now.AddDate(0, -2, 0), env.now.AddDate(0, -1, 0))

	env.spend(t, 4000)
	env.spend(t, 8000)

	statuses, err := env.ledger.BudgetStatus(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	st := statuses[0]
	assert.Equal(t, "active", st.Budget.ID)
	assert.Equal(t, "Groceries", st.CategoryName)
	assert.Equal(t, int64(12000), st.Spent.Cents)
	assert.Equal(t, int64(-2000), st.Remaining)
}

func TestMarkNotificationRead(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()
	env.budget(t, "b1", 100, env.now.AddDate(0, 0, -7), env.now.AddDate(0, 0, 7))

	env.spend(t, 4000)

	unread, err := env.ledger.UnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "b1", unread[0].BudgetID)
	assert.Equal(t, "Groceries", unread[0].CategoryName)

	// Another user cannot see or touch it.
	err = env.ledger.MarkNotificationRead(ctx, "u2", "b1", unread[0].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, env.ledger.MarkNotificationRead(ctx, "u1", "b1", unread[0].ID))
	// Idempotent.
	require.NoError(t, env.ledger.MarkNotificationRead(ctx, "u1", "b1", unread[0].ID))

	unread, err = env.ledger.UnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, unread)

	err = env.ledger.MarkNotificationRead(ctx, "u1", "b1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListTransactionsScopedToUser(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	env.spend(t, 100)

	txs, err := env.ledger.ListTransactions(ctx, "u2", storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}
