package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryRow is one group of the transaction summary: all transactions of
// one type in one category within the query window.
type SummaryRow struct {
	Type         TransactionType
	CategoryID   string
	CategoryName string
	Total        Money
	Count        int64
}

// Average returns the mean transaction amount of the group as a currency
// decimal. Zero-count groups never leave the store, but guard anyway.
func (r SummaryRow) Average() decimal.Decimal {
	if r.Count == 0 {
		return decimal.Zero
	}
	return r.Total.Decimal().Div(decimal.NewFromInt(r.Count)).Round(2)
}

// TimelinePoint is one day of the daily timeline, per transaction type.
type TimelinePoint struct {
	Date  time.Time
	Type  TransactionType
	Total Money
}

// AccountBalance is a per-account balance derived purely from the signed
// sum of posted transactions, independent of the stored balance column.
type AccountBalance struct {
	AccountID   string
	AccountName string
	Type        AccountType
	Balance     int64 // signed cents
}

// BudgetStatus is the evaluation of one active budget: cumulative spend in
// its window against its ceiling. Remaining may be negative.
type BudgetStatus struct {
	Budget       Budget
	CategoryName string
	Spent        Money
	Remaining    int64 // signed cents
}

// UnreadNotification is a notification flattened out of its budget for the
// unread listing, tagged with the owning budget and its category name.
type UnreadNotification struct {
	Notification
	BudgetID     string
	CategoryName string
}
