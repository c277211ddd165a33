package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Summary groups the user's transactions in the window by (type, category)
// with total and count. Averages are derived in core from these two.
func (r *Repository) Summary(ctx context.Context, userID string, from, to time.Time) ([]core.SummaryRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.type, t.category_id, c.name, SUM(t.amount_cents), COUNT(*)
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.date >= ? AND t.date <= ?
		 GROUP BY t.type, t.category_id
		 ORDER BY t.type, c.name`,
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	var summary []core.SummaryRow
	for rows.Next() {
		var row core.SummaryRow
		var typ string
		if err := rows.Scan(&typ, &row.CategoryID, &row.CategoryName, &row.Total.Cents, &row.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		row.Type = core.TransactionType(typ)
		summary = append(summary, row)
	}
	return summary, rows.Err()
}

// Timeline groups the user's transactions in the window by calendar day and
// type, oldest day first.
func (r *Repository) Timeline(ctx context.Context, userID string, from, to time.Time) ([]core.TimelinePoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m-%d', date), type, SUM(amount_cents)
		 FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 GROUP BY strftime('%Y-%m-%d', date), type
		 ORDER BY 1, 2`,
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("timeline query: %w", err)
	}
	defer rows.Close()

	var timeline []core.TimelinePoint
	for rows.Next() {
		var day, typ string
		var total int64
		if err := rows.Scan(&day, &typ, &total); err != nil {
			return nil, fmt.Errorf("scan timeline point: %w", err)
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse timeline day %q: %w", day, err)
		}
		timeline = append(timeline, core.TimelinePoint{
			Date:  date,
			Type:  core.TransactionType(typ),
			Total: core.Money{Cents: total},
		})
	}
	return timeline, rows.Err()
}

// AccountBalances derives each account's balance from the signed sum of its
// transactions across all time. Accounts without transactions report zero.
func (r *Repository) AccountBalances(ctx context.Context, userID string) ([]core.AccountBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.type,
		        COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount_cents ELSE -t.amount_cents END), 0)
		 FROM accounts a
		 LEFT JOIN transactions t ON t.account_id = a.id
		 WHERE a.user_id = ?
		 GROUP BY a.id
		 ORDER BY a.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("account balances query: %w", err)
	}
	defer rows.Close()

	var balances []core.AccountBalance
	for rows.Next() {
		var b core.AccountBalance
		var typ string
		if err := rows.Scan(&b.AccountID, &b.AccountName, &typ, &b.Balance); err != nil {
			return nil, fmt.Errorf("scan account balance: %w", err)
		}
		b.Type = core.AccountType(typ)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
