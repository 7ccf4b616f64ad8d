package core

import (
	"errors"
	"testing"
)

func TestParseSignedAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"-10", -1000, true},
		{"20", 2000, true},
		{"+20.5", 2050, true},
		{"-50.25", -5025, true},
		{"€ 12,30", 1230, true},
		{"-$4.99", -499, true},
		{"(12.50)", -1250, true},
		{"0", 0, true},
		{".5", 50, true},
		{"1,23", 123, true},
		{" 2.50 ", 250, true},
		{"1.005", 101, true},
		{"1e3", 100000, true},
		{"-2.5E1", -2500, true},
		{"1.2345e2", 12345, true},
		{"1e-3", 0, true},
		{"€1,5e2", 15000, true},
		{"1e", 0, false},
		{"e3", 0, false},
		{"1e400", 0, false},
		{"0x1p3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
			continue
		}
		if !errors.Is(err, ErrParse) {
			t.Fatalf("%q expected parse error, got %v", tc.in, err)
		}
	}
}

func TestMoneyConversions(t *testing.T) {
	if got := MoneyFromFloat(50.25); got.Cents != 5025 {
		t.Fatalf("MoneyFromFloat(50.25)=%d", got.Cents)
	}
	if got := MoneyFromFloat(0.1 + 0.2); got.Cents != 30 {
		t.Fatalf("MoneyFromFloat(0.3)=%d", got.Cents)
	}
	if got := (Money{Cents: -5025}).String(); got != "-50.25" {
		t.Fatalf("String()=%q", got)
	}
	if got := (Money{Cents: 7}).String(); got != "0.07" {
		t.Fatalf("String()=%q", got)
	}
	if got := (Money{Cents: 250000}).Float(); got != 2500 {
		t.Fatalf("Float()=%v", got)
	}
}
