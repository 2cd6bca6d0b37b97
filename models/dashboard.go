package models

// ChartPoint is one day of the Mon..Sun weekly expense series.
type ChartPoint struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// DashboardSnapshot is a point-in-time aggregation of a wallet's
// ledger. Derived and ephemeral: recomputed on every request and on
// every committed mutation, never persisted.
type DashboardSnapshot struct {
	Balance        Money         `json:"balance"`
	TodayExpense   Money         `json:"today_expense"`
	MonthlyExpense Money         `json:"monthly_expense"`
	MonthlyIncome  Money         `json:"monthly_income"`
	TodayTrend     string        `json:"today_trend"`
	ExpenseTrend   string        `json:"expense_trend"`
	RecentExpenses []LedgerEntry `json:"recent_expenses"`
	ChartData      []ChartPoint  `json:"chart_data"`
}

// DashboardUpdate is the message delivered to live subscribers after
// each committed ledger mutation.
type DashboardUpdate struct {
	Dashboard *DashboardSnapshot `json:"dashboard"`
	Expenses  []LedgerEntry      `json:"expenses"`
}
