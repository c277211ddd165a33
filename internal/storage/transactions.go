package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	From       time.Time
	To         time.Time
	CategoryID string
	AccountID  string
	Type       core.TransactionType
}

// CreateTransactionWithBalance inserts the ledger entry and applies its
// signed amount to the account balance as one SQL transaction. A partial
// write (entry without balance change, or vice versa) cannot happen.
func (r *Repository) CreateTransactionWithBalance(ctx context.Context, t core.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	_, err = dbtx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, account_id, category_id, type, amount_cents, description, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents, t.Description, t.Date.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	res, err := dbtx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ? AND user_id = ?`,
		t.Signed(), t.AccountID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance rows: %w", err)
	}
	if n == 0 {
		return core.NotFound("account")
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions matching the filter,
// newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	var (
		conds = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if !f.From.IsZero() && !f.To.IsZero() {
		conds = append(conds, "date >= ?", "date <= ?")
		args = append(args, f.From.UTC(), f.To.UTC())
	}
	if f.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.AccountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}

	query := `SELECT id, user_id, account_id, category_id, type, amount_cents, description, date
		FROM transactions WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &typ, &t.Amount.Cents, &t.Description, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SumExpenses totals expense amounts for one user and category within the
// closed date window. This is the budget-evaluation aggregate.
func (r *Repository) SumExpenses(ctx context.Context, userID, categoryID string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE user_id = ? AND category_id = ? AND type = 'expense' AND date >= ? AND date <= ?`,
		userID, categoryID, from.UTC(), to.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}
