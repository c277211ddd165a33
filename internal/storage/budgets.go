package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category_id, amount_cents, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, b.Amount.Cents, b.StartDate.UTC(), b.EndDate.UTC(), b.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, start_date, end_date, created_at FROM budgets WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.StartDate, &b.EndDate, &b.CreatedAt)
	if err != nil {
		return core.Budget{}, notFound(err, "budget")
	}

	notifications, err := r.listNotifications(ctx, b.ID)
	if err != nil {
		return core.Budget{}, err
	}
	b.Notifications = notifications
	return b, nil
}

// ListBudgets returns all budgets of a user with their notifications loaded.
func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, start_date, end_date, created_at
		 FROM budgets WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.StartDate, &b.EndDate, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range budgets {
		notifications, err := r.listNotifications(ctx, budgets[i].ID)
		if err != nil {
			return nil, err
		}
		budgets[i].Notifications = notifications
	}
	return budgets, nil
}

// ActiveBudgets returns budgets of the user scoped to the category whose
// closed [start_date, end_date] window contains now. Notifications are not
// loaded; breach evaluation does not need them.
func (r *Repository) ActiveBudgets(ctx context.Context, userID, categoryID string, now time.Time) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, start_date, end_date, created_at
		 FROM budgets WHERE user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?`,
		userID, categoryID, now.UTC(), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("active budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.StartDate, &b.EndDate, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// AppendNotification adds a notification to its owning budget. Order is
// preserved by insertion; listings sort by date then rowid.
func (r *Repository) AppendNotification(ctx context.Context, budgetID string, n core.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_notifications (id, budget_id, message, date, exceeded_cents, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, budgetID, n.Message, n.Date.UTC(), n.ExceededAmount.Cents, n.IsRead,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// MarkNotificationRead flips is_read on one notification of the budget.
// Marking an already-read notification is a no-op success; a missing id is
// core.ErrNotFound.
func (r *Repository) MarkNotificationRead(ctx context.Context, budgetID, notificationID string) error {
	var isRead bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_read FROM budget_notifications WHERE id = ? AND budget_id = ?`,
		notificationID, budgetID,
	).Scan(&isRead)
	if err != nil {
		return notFound(err, "notification")
	}
	if isRead {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE budget_notifications SET is_read = 1 WHERE id = ? AND budget_id = ?`,
		notificationID, budgetID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// ListUnreadNotifications flattens unread notifications across all budgets
// of the user, tagged with the budget id and its category name.
func (r *Repository) ListUnreadNotifications(ctx context.Context, userID string) ([]core.UnreadNotification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.message, n.date, n.exceeded_cents, n.is_read, b.id, c.name
		 FROM budget_notifications n
		 JOIN budgets b ON b.id = n.budget_id
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ? AND n.is_read = 0
		 ORDER BY n.date DESC, n.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.UnreadNotification
	for rows.Next() {
		var n core.UnreadNotification
		if err := rows.Scan(&n.ID, &n.Message, &n.Date, &n.ExceededAmount.Cents, &n.IsRead, &n.BudgetID, &n.CategoryName); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *Repository) listNotifications(ctx context.Context, budgetID string) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, message, date, exceeded_cents, is_read
		 FROM budget_notifications WHERE budget_id = ? ORDER BY date, rowid`,
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var n core.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Date, &n.ExceededAmount.Cents, &n.IsRead); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
