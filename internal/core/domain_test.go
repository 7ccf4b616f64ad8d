package core

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestTypeValid(t *testing.T) {
	cases := []struct {
		t  Type
		ok bool
	}{
		{Income, true},
		{Expense, true},
		{Type("transfer"), false},
		{Type(""), false},
	}
	for i, tc := range cases {
		if got := tc.t.Valid(); got != tc.ok {
			t.Fatalf("case %d: Valid(%q)=%v, want %v", i, tc.t, got, tc.ok)
		}
	}
}

func TestParseType(t *testing.T) {
	if got, err := ParseType(" Expense "); err != nil || got != Expense {
		t.Fatalf("expected expense, got %q err=%v", got, err)
	}
	if _, err := ParseType("refund"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero, got %v", err)
	}
	if err := (Money{Cents: -5}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative, got %v", err)
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{
		Date:     "2024-01-01",
		Category: "Groceries",
		Amount:   Money{Cents: 100},
		Type:     Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		n    NewTransaction
		want error
	}{
		{NewTransaction{Date: "", Category: "c", Amount: Money{Cents: 1}, Type: Income}, ErrEmptyDate},
		{NewTransaction{Date: "2024-01-01", Category: " ", Amount: Money{Cents: 1}, Type: Income}, ErrEmptyCategory},
		{NewTransaction{Date: "2024-01-01", Category: "c", Amount: Money{Cents: 0}, Type: Income}, ErrInvalidAmount},
		{NewTransaction{Date: "2024-01-01", Category: "c", Amount: Money{Cents: 1}, Type: "x"}, ErrInvalidType},
	}
	for i, tc := range bads {
		err := tc.n.Validate()
		if !errors.Is(err, tc.want) || !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestPatchValidateAndApply(t *testing.T) {
	neg := Money{Cents: -500}
	if err := (Patch{Amount: &neg}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := (Patch{Category: strPtr("")}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected empty category, got %v", err)
	}
	if !(Patch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	orig := Transaction{ID: 7, Date: "2024-01-01", Category: "A", Amount: Money{Cents: 100}, Description: "d", Type: Expense}
	amt := Money{Cents: 250}
	got := Patch{Amount: &amt, Description: strPtr("")}.Apply(orig)
	if got.ID != 7 || got.Type != Expense || got.Category != "A" || got.Amount.Cents != 250 || got.Description != "" {
		t.Fatalf("unexpected patched transaction: %+v", got)
	}
}

func TestSigned(t *testing.T) {
	e := Transaction{Amount: Money{Cents: 1050}, Type: Expense}
	if e.Signed().Cents != -1050 {
		t.Fatalf("expense should be negative, got %d", e.Signed().Cents)
	}
	i := Transaction{Amount: Money{Cents: 1050}, Type: Income}
	if i.Signed().Cents != 1050 {
		t.Fatalf("income should be positive, got %d", i.Signed().Cents)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, out string
		ok      bool
	}{
		{"2024-10-01", "2024-10-01", true},
		{" 2024/10/01 ", "2024-10-01", true},
		{"21/10/2024", "2024-10-21", true},
		{"01/02/2024", "2024-01-02", true},
		{"1/5/2024", "2024-01-05", true},
		{"2024-1-5", "2024-01-05", true},
		{"2024/3/9", "2024-03-09", true},
		{"5.3.2024", "2024-03-05", true},
		{"12-31-2024", "2024-12-31", true},
		{"20240105", "2024-01-05", true},
		{"2024-1-5 08:30:00", "2024-01-05", true},
		{"13/13/2024", "", false},
		{"2024-10-01T08:30:00Z", "2024-10-01", true},
		{"2024-10-01 08:30:00", "2024-10-01", true},
		{"Oct 1, 2024", "2024-10-01", true},
		{"yesterday", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %q", tc.in, got)
		}
	}
}

func TestNormalizeDateDayFirst(t *testing.T) {
	cases := []struct{ in, out string }{
		{"01/02/2024", "2024-02-01"},
		{"1/5/2024", "2024-05-01"},
		{"12/31/2024", "2024-12-31"},
		{"2024-1-5", "2024-01-05"},
		{"5.3.2024", "2024-03-05"},
	}
	for _, tc := range cases {
		got, err := NormalizeDateDayFirst(tc.in)
		if err != nil || got != tc.out {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestMonthOf(t *testing.T) {
	if m, ok := MonthOf("2024-02-29"); !ok || m != "2024-02" {
		t.Fatalf("unexpected month %q ok=%v", m, ok)
	}
	if _, ok := MonthOf("sometime in march"); ok {
		t.Fatalf("raw text should not bucket")
	}
}
