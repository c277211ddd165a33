package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AccountService is user-scoped CRUD over accounts.
type AccountService struct {
	store *storage.Repository
	now   func() time.Time
}

func NewAccountService(store *storage.Repository) *AccountService {
	return &AccountService{store: store, now: time.Now}
}

type CreateAccountInput struct {
	Name         string
	Type         core.AccountType
	BalanceCents int64
}

func (s *AccountService) Create(ctx context.Context, userID string, in CreateAccountInput) (core.Account, error) {
	account := core.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Type:      in.Type,
		Balance:   core.Money{Cents: in.BalanceCents},
		CreatedAt: s.now(),
	}
	if err := account.Validate(); err != nil {
		return core.Account{}, err
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"account_id", account.ID, "user_id", userID, "type", string(account.Type))
	return account, nil
}

func (s *AccountService) List(ctx context.Context, userID string) ([]core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) Get(ctx context.Context, userID, accountID string) (core.Account, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return core.Account{}, err
	}
	if err := assertOwned(account, userID, "account"); err != nil {
		return core.Account{}, err
	}
	return account, nil
}

// UpdateAccountInput carries the mutable fields. Nil means "leave as is".
type UpdateAccountInput struct {
	Name         *string
	Type         *core.AccountType
	BalanceCents *int64
}

func (s *AccountService) Update(ctx context.Context, userID, accountID string, in UpdateAccountInput) (core.Account, error) {
	account, err := s.Get(ctx, userID, accountID)
	if err != nil {
		return core.Account{}, err
	}

	if in.Name != nil {
		account.Name = *in.Name
	}
	if in.Type != nil {
		account.Type = *in.Type
	}
	if in.BalanceCents != nil {
		account.Balance = core.Money{Cents: *in.BalanceCents}
	}
	if err := account.Validate(); err != nil {
		return core.Account{}, err
	}

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, userID, accountID string) error {
	if _, err := s.Get(ctx, userID, accountID); err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	slog.InfoContext(ctx, "Account deleted", "account_id", accountID, "user_id", userID)
	return nil
}

// SetBalance overwrites the stored balance directly. This bypasses the
// transaction-derived balance; the derived report remains available for
// reconciliation.
func (s *AccountService) SetBalance(ctx context.Context, userID, accountID string, cents int64) (core.Account, error) {
	account, err := s.Get(ctx, userID, accountID)
	if err != nil {
		return core.Account{}, err
	}

	if err := s.store.SetAccountBalance(ctx, accountID, cents); err != nil {
		return core.Account{}, fmt.Errorf("set balance: %w", err)
	}
	account.Balance = core.Money{Cents: cents}
	return account, nil
}
