package core

import (
	"errors"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestAccountTypeValid(t *testing.T) {
	cases := []struct {
		typ AccountType
		ok  bool
	}{
		{AccountBank, true},
		{AccountMobileMoney, true},
		{AccountCash, true},
		{"credit_card", false},
		{"", false},
	}
	for i, tc := range cases {
		if got := tc.typ.Valid(); got != tc.ok {
			t.Fatalf("case %d: Valid(%q) = %v, want %v", i, tc.typ, got, tc.ok)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:       Expense,
		Amount:     Money{Cents: 1250},
		AccountID:  "acc",
		CategoryID: "cat",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: Money{Cents: 1}, AccountID: "a", CategoryID: "c"},
		{Type: Income, Amount: Money{Cents: 0}, AccountID: "a", CategoryID: "c"},
		{Type: Income, Amount: Money{Cents: 1}, AccountID: "", CategoryID: "c"},
		{Type: Expense, Amount: Money{Cents: 1}, AccountID: "a", CategoryID: ""},
	}
	for i, tx := range bads {
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: error %v does not wrap ErrInvalidArgument", i, err)
		}
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Type: Income, Amount: Money{Cents: 500}}
	if in.Signed() != 500 {
		t.Fatalf("income signed = %d, want 500", in.Signed())
	}
	out := Transaction{Type: Expense, Amount: Money{Cents: 500}}
	if out.Signed() != -500 {
		t.Fatalf("expense signed = %d, want -500", out.Signed())
	}
}

func TestBudgetActiveAt(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	b := Budget{StartDate: start, EndDate: end}

	cases := []struct {
		now  time.Time
		want bool
	}{
		{start.Add(-time.Second), false},
		{start, true}, // closed interval includes both edges
		{start.AddDate(0, 0, 15), true},
		{end, true},
		{end.Add(time.Second), false},
	}
	for i, tc := range cases {
		if got := b.ActiveAt(tc.now); got != tc.want {
			t.Fatalf("case %d: ActiveAt(%v) = %v, want %v", i, tc.now, got, tc.want)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	good := Budget{
		Amount:     Money{Cents: 10000},
		StartDate:  start,
		EndDate:    start.AddDate(0, 1, 0),
		CategoryID: "cat",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	inverted := good
	inverted.EndDate = start.AddDate(0, 0, -1)
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}
