package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, type, balance_cents, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, string(a.Type), a.Balance.Cents, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	var a core.Account
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, balance_cents, created_at FROM accounts WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.UserID, &a.Name, &typ, &a.Balance.Cents, &a.CreatedAt)
	if err != nil {
		return core.Account{}, notFound(err, "account")
	}
	a.Type = core.AccountType(typ)
	return a, nil
}

func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, balance_cents, created_at
		 FROM accounts WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &typ, &a.Balance.Cents, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, balance_cents = ? WHERE id = ?`,
		a.Name, string(a.Type), a.Balance.Cents, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows: %w", err)
	}
	if n == 0 {
		return core.NotFound("account")
	}
	return nil
}

func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if n == 0 {
		return core.NotFound("account")
	}
	return nil
}

// SetAccountBalance overwrites the stored balance directly, bypassing the
// transaction-derived invariant. Kept for the explicit balance endpoint.
func (r *Repository) SetAccountBalance(ctx context.Context, id string, cents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = ? WHERE id = ?`, cents, id,
	)
	if err != nil {
		return fmt.Errorf("set account balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set account balance rows: %w", err)
	}
	if n == 0 {
		return core.NotFound("account")
	}
	return nil
}
