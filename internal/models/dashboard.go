package models

import "github.com/shopspring/decimal"

// Period selects the window of a dashboard summary.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod maps a query value to a Period, defaulting to a month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek, PeriodYear:
		return Period(s)
	}
	return PeriodMonth
}

// Dashboard is the summary shown on the home screen
type Dashboard struct {
	Period         Period            `json:"period"`
	StartDate      Date              `json:"start_date"`
	EndDate        Date              `json:"end_date"`
	Balance        decimal.Decimal   `json:"balance"`
	TotalIncome    decimal.Decimal   `json:"total_income"`
	TotalExpenses  decimal.Decimal   `json:"total_expenses"`
	Net            decimal.Decimal   `json:"net"`
	ExpenseByCat   []CategorySummary `json:"expense_by_category"`
	IncomeByCat    []CategorySummary `json:"income_by_category"`
	MonthlyTrend   []MonthlySummary  `json:"monthly_trend"`
	Recent         []Transaction     `json:"recent_transactions"`
	WalletCount    int               `json:"wallet_count"`
	TransactionCnt int               `json:"transaction_count"`
	Comparison     *PeriodComparison `json:"comparison,omitempty"`
}

// PeriodComparison compares the period with the one just before it.
type PeriodComparison struct {
	PreviousStart    Date            `json:"previous_start"`
	PreviousEnd      Date            `json:"previous_end"`
	PreviousIncome   decimal.Decimal `json:"previous_income"`
	PreviousExpenses decimal.Decimal `json:"previous_expenses"`
	IncomeChange     float64         `json:"income_change"`
	ExpensesChange   float64         `json:"expenses_change"`
}

// CategorySummary represents spending in a category
type CategorySummary struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// MonthlySummary represents a month's financial summary
type MonthlySummary struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}
