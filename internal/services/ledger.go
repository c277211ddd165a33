package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/storage"
)

// LedgerService posts transactions, maintains account balances and
// evaluates budgets against posted expenses.
type LedgerService struct {
	store     *storage.Repository
	publisher EventPublisher
	now       func() time.Time
}

func NewLedgerService(store *storage.Repository, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// PostTransactionInput carries the client-supplied fields of a posting.
type PostTransactionInput struct {
	Type        core.TransactionType
	AmountCents int64
	Description string
	CategoryID  string
	AccountID   string
	Date        time.Time // zero means "now"
}

// PostTransaction validates the referenced account and category, appends
// the ledger entry with its balance update as one atomic write, and for
// expenses evaluates every matching active budget. Each budget still over
// its ceiling after recomputation gains a new notification; there is no
// de-duplication across postings.
func (s *LedgerService) PostTransaction(ctx context.Context, userID string, in PostTransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      core.Money{Cents: in.AmountCents},
		Description: in.Description,
		Date:        in.Date,
	}
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	account, err := s.store.GetAccount(ctx, in.AccountID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load account: %w", err)
	}
	if err := assertOwned(account, userID, "account"); err != nil {
		return core.Transaction{}, err
	}

	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load category: %w", err)
	}
	if err := assertOwned(category, userID, "category"); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransactionWithBalance(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("post transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction posted",
		"transaction_id", tx.ID,
		"user_id", userID,
		"account_id", tx.AccountID,
		"category_id", tx.CategoryID,
		"transaction_type", string(tx.Type),
		"amount_cents", tx.Amount.Cents)

	if tx.Type == core.Expense {
		if err := s.evaluateBudgets(ctx, tx, category); err != nil {
			// The posting itself is committed; the caller still learns
			// the evaluation failed.
			return core.Transaction{}, fmt.Errorf("evaluate budgets: %w", err)
		}
	}

	s.publishPosted(ctx, tx)
	return tx, nil
}

// evaluateBudgets recomputes cumulative spend for every active budget
// scoped to the transaction's category and appends a notification to each
// one whose ceiling is exceeded.
func (s *LedgerService) evaluateBudgets(ctx context.Context, tx core.Transaction, category core.Category) error {
	budgets, err := s.store.ActiveBudgets(ctx, tx.UserID, tx.CategoryID, s.now())
	if err != nil {
		return err
	}

	for _, budget := range budgets {
		total, err := s.store.SumExpenses(ctx, tx.UserID, tx.CategoryID, budget.StartDate, budget.EndDate)
		if err != nil {
			return err
		}
		if total <= budget.Amount.Cents {
			continue
		}

		exceeded := total - budget.Amount.Cents
		notification := core.Notification{
			ID:             uuid.NewString(),
			Message:        fmt.Sprintf("Budget exceeded for %s", category.Name),
			Date:           s.now(),
			ExceededAmount: core.Money{Cents: exceeded},
		}
		if err := s.store.AppendNotification(ctx, budget.ID, notification); err != nil {
			return err
		}

		slog.WarnContext(ctx, "Budget exceeded",
			"budget_id", budget.ID,
			"user_id", tx.UserID,
			"category_id", tx.CategoryID,
			"exceeded_cents", exceeded)

		s.publishBreached(ctx, budget, exceeded)
	}
	return nil
}

// ListTransactions returns the caller's transactions newest first, narrowed
// by the filter.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// CreateBudgetInput carries the client-supplied fields of a budget.
type CreateBudgetInput struct {
	CategoryID  string
	AmountCents int64
	StartDate   time.Time
	EndDate     time.Time
}

func (s *LedgerService) CreateBudget(ctx context.Context, userID string, in CreateBudgetInput) (core.Budget, error) {
	budget := core.Budget{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: in.CategoryID,
		Amount:     core.Money{Cents: in.AmountCents},
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		CreatedAt:  s.now(),
	}
	if err := budget.Validate(); err != nil {
		return core.Budget{}, err
	}

	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("load category: %w", err)
	}
	if err := assertOwned(category, userID, "category"); err != nil {
		return core.Budget{}, err
	}

	if err := s.store.CreateBudget(ctx, budget); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return budget, nil
}

// ListBudgets returns all budgets of the caller with notifications.
func (s *LedgerService) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// BudgetStatus evaluates every active budget of the caller: spent is the
// cumulative expense total in the budget's window, remaining may go
// negative. Notifications are returned unfiltered. Pure read.
func (s *LedgerService) BudgetStatus(ctx context.Context, userID string) ([]core.BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	now := s.now()
	var statuses []core.BudgetStatus
	for _, budget := range budgets {
		if !budget.ActiveAt(now) {
			continue
		}

		spent, err := s.store.SumExpenses(ctx, userID, budget.CategoryID, budget.StartDate, budget.EndDate)
		if err != nil {
			return nil, fmt.Errorf("sum expenses: %w", err)
		}

		category, err := s.store.GetCategory(ctx, budget.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("load category: %w", err)
		}

		statuses = append(statuses, core.BudgetStatus{
			Budget:       budget,
			CategoryName: category.Name,
			Spent:        core.Money{Cents: spent},
			Remaining:    budget.Amount.Cents - spent,
		})
	}
	return statuses, nil
}

// UnreadNotifications flattens unread notifications across the caller's
// budgets.
func (s *LedgerService) UnreadNotifications(ctx context.Context, userID string) ([]core.UnreadNotification, error) {
	notifications, err := s.store.ListUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flips one notification to read. Idempotent: marking
// an already-read notification succeeds without change. A budget or
// notification the caller does not own is NotFound.
func (s *LedgerService) MarkNotificationRead(ctx context.Context, userID, budgetID, notificationID string) error {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}
	if err := assertOwned(budget, userID, "budget"); err != nil {
		return err
	}

	if err := s.store.MarkNotificationRead(ctx, budgetID, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *LedgerService) publishPosted(ctx context.Context, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	msg := &events.TransactionPostedMessage{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		AccountID:     tx.AccountID,
		CategoryID:    tx.CategoryID,
		Type:          string(tx.Type),
		AmountCents:   tx.Amount.Cents,
		Timestamp:     s.now(),
	}
	if err := s.publisher.PublishTransactionPosted(ctx, msg); err != nil {
		// Event publishing is best effort; the posting already committed.
		slog.ErrorContext(ctx, "Failed to publish transaction posted event",
			"transaction_id", tx.ID, "error", err)
	}
}

func (s *LedgerService) publishBreached(ctx context.Context, budget core.Budget, exceeded int64) {
	if s.publisher == nil {
		return
	}
	msg := &events.BudgetBreachedMessage{
		BudgetID:      budget.ID,
		UserID:        budget.UserID,
		CategoryID:    budget.CategoryID,
		ExceededCents: exceeded,
		Timestamp:     s.now(),
	}
	if err := s.publisher.PublishBudgetBreached(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget breached event",
			"budget_id", budget.ID, "error", err)
	}
}
