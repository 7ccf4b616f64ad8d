// Package aggregate computes derived views over a snapshot of transactions.
//
// Every function is pure: it reads the slice it is given, never the store,
// and returns an empty result for an empty snapshot.
package aggregate

import (
	"fmt"
	"sort"

	"finance/internal/core"
)

// CategoryTotals sums amounts per category for one type, largest first.
// Equal totals are ordered by category name.
func CategoryTotals(snapshot []core.Transaction, typ core.Type) []core.CategoryTotal {
	sums := map[string]int64{}
	for _, t := range snapshot {
		if t.Type != typ {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}

	out := make([]core.CategoryTotal, 0, len(sums))
	for cat, cents := range sums {
		out = append(out, core.CategoryTotal{Category: cat, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategories returns the n largest categories for typ. n <= 0 means all.
func TopCategories(snapshot []core.Transaction, typ core.Type, n int) []core.CategoryTotal {
	totals := CategoryTotals(snapshot, typ)
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// MonthlySummary buckets transactions by calendar month, oldest first. A
// month missing one of the types reports zero for it. Only months with at
// least one transaction appear. Transactions whose date is not a calendar
// date cannot be bucketed and are left out.
func MonthlySummary(snapshot []core.Transaction) []core.MonthSummary {
	months := map[string]*core.MonthSummary{}
	for _, t := range snapshot {
		month, ok := core.MonthOf(t.Date)
		if !ok {
			continue
		}
		m, exists := months[month]
		if !exists {
			m = &core.MonthSummary{Month: month}
			months[month] = m
		}
		switch t.Type {
		case core.Income:
			m.Income = m.Income.Add(t.Amount)
		case core.Expense:
			m.Expense = m.Expense.Add(t.Amount)
		}
	}

	out := make([]core.MonthSummary, 0, len(months))
	for _, m := range months {
		m.Savings = m.Income.Sub(m.Expense)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// MonthlyTrendSeries is the long form of MonthlySummary: one point per
// month and type that has transactions, ordered by month, income first.
func MonthlyTrendSeries(snapshot []core.Transaction) []core.TrendPoint {
	type key struct {
		month string
		typ   core.Type
	}
	sums := map[key]int64{}
	for _, t := range snapshot {
		month, ok := core.MonthOf(t.Date)
		if !ok || !t.Type.Valid() {
			continue
		}
		sums[key{month, t.Type}] += t.Amount.Cents
	}

	out := make([]core.TrendPoint, 0, len(sums))
	for k, cents := range sums {
		out = append(out, core.TrendPoint{Month: k.month, Type: k.typ, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return typeRank(out[i].Type) < typeRank(out[j].Type)
	})
	return out
}

// FilterByMonth keeps the transactions dated in the given year and month.
func FilterByMonth(snapshot []core.Transaction, year, month int) []core.Transaction {
	want := fmt.Sprintf("%04d-%02d", year, month)
	out := make([]core.Transaction, 0)
	for _, t := range snapshot {
		m, ok := core.MonthOf(t.Date)
		if !ok {
			continue
		}
		if m == want {
			out = append(out, t)
		}
	}
	return out
}

func typeRank(t core.Type) int {
	if t == core.Income {
		return 0
	}
	return 1
}
