package core

import (
	"strings"
	"time"
)

const (
	AccountBank        AccountType = "bank"
	AccountMobileMoney AccountType = "mobile_money"
	AccountCash        AccountType = "cash"

	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	AccountType     string
	TransactionType string

	User struct {
		ID           string
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Account struct {
		ID        string
		UserID    string
		Name      string
		Type      AccountType
		Balance   Money
		CreatedAt time.Time
	}

	Category struct {
		ID          string
		UserID      string
		Name        string
		Description string
		ParentID    string // empty for top-level categories
		Parent      *Category
		CreatedAt   time.Time
	}

	// Transaction is an append-only ledger entry. There are no update or
	// delete operations on it anywhere in the system.
	Transaction struct {
		ID          string
		UserID      string
		AccountID   string
		CategoryID  string
		Type        TransactionType
		Amount      Money
		Description string
		Date        time.Time
	}

	Budget struct {
		ID            string
		UserID        string
		CategoryID    string
		Amount        Money
		StartDate     time.Time
		EndDate       time.Time
		Notifications []Notification
		CreatedAt     time.Time
	}

	// Notification lives inside its owning Budget. It has no lifecycle of
	// its own beyond the mark-read flip, addressed by its embedded ID.
	Notification struct {
		ID             string
		Message        string
		Date           time.Time
		ExceededAmount Money
		IsRead         bool
	}
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountMobileMoney, AccountCash:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Signed returns the balance delta in cents: income adds, expense subtracts.
func (t Transaction) Signed() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.AccountID == "" || t.CategoryID == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() || b.EndDate.Before(b.StartDate) {
		return ErrInvalidWindow
	}
	if b.CategoryID == "" {
		return ErrInvalidArgument
	}
	return nil
}

// ActiveAt reports whether now falls within the closed window
// [StartDate, EndDate]. Only active budgets are ever evaluated.
func (b Budget) ActiveAt(now time.Time) bool {
	return !now.Before(b.StartDate) && !now.After(b.EndDate)
}

// Owner returns the owning user id. All owned entities implement this so
// ownership can be asserted by a single uniform check.
func (a Account) Owner() string     { return a.UserID }
func (c Category) Owner() string    { return c.UserID }
func (t Transaction) Owner() string { return t.UserID }
func (b Budget) Owner() string      { return b.UserID }
