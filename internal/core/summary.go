package core

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Category string
	Total    Money
}

// MonthSummary holds the totals for one calendar month (YYYY-MM).
type MonthSummary struct {
	Month   string
	Income  Money
	Expense Money
	Savings Money
}

// TrendPoint is one month×type row of the long-form trend series.
type TrendPoint struct {
	Month string
	Type  Type
	Total Money
}
