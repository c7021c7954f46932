// Package summary computes the dashboard figures for a user.
package summary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrendMonths is the length of the monthly trend.
const TrendMonths = 6

// RecentLimit caps the recent transaction list.
const RecentLimit = 10

// Source is the data the dashboard reads.
type Source interface {
	ListWallets(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
}

// Service provides dashboard calculations
type Service struct {
	db  Source
	loc *time.Location
	now func() time.Time
}

// New creates a summary service that resolves "today" in loc.
func New(db Source, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, now: time.Now}
}

// PeriodRange returns the inclusive window of p ending today. A week is
// the last seven days; month and year start on the first day of the
// current month or year.
func PeriodRange(p models.Period, today models.Date) (start, end models.Date) {
	switch p {
	case models.PeriodWeek:
		return today.AddDays(-7), today
	case models.PeriodYear:
		return models.NewDate(today.Year(), time.January, 1), today
	}
	return models.NewDate(today.Year(), today.Month(), 1), today
}

// PreviousRange returns the window of the same length just before start.
func PreviousRange(start, end models.Date) (models.Date, models.Date) {
	days := int(end.Sub(start.Time).Hours() / 24)
	prevEnd := start.AddDays(-1)
	return prevEnd.AddDays(-days), prevEnd
}

// Dashboard builds the dashboard for a user. With walletID set, the
// balance and every figure are limited to that wallet.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID, p models.Period, walletID uuid.NullUUID) (*models.Dashboard, error) {
	today := models.DateOf(s.now().In(s.loc))
	start, end := PeriodRange(p, today)
	prevStart, _ := PreviousRange(start, end)

	from := trendStart(today)
	if prevStart.Before(from.Time) {
		from = prevStart
	}

	wallets, err := s.db.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance := models.TotalBalance(wallets)
	if walletID.Valid {
		balance = decimal.Zero
		found := false
		for _, w := range wallets {
			if w.ID == walletID.UUID {
				balance, found = w.Balance, true
			}
		}
		if !found {
			return nil, fmt.Errorf("wallet %s: %w", walletID.UUID, ErrUnknownWallet)
		}
	}

	txs, err := s.db.ListTransactions(ctx, userID, models.TransactionFilter{
		WalletID: walletID,
		From:     &from,
		To:       &end,
	})
	if err != nil {
		return nil, err
	}

	d := Calculate(models.NewTransactionSet(txs), start, end, today)
	d.Period = p
	d.Balance = balance
	d.WalletCount = len(wallets)
	return d, nil
}

// Calculate computes the period figures from a transaction set that
// covers at least the period, the period before it and the trend months.
// Transfer legs move money between wallets and are left out of the
// income and expense figures, but still listed as recent transactions.
func Calculate(all *models.TransactionSet, start, end, today models.Date) *models.Dashboard {
	flows := all.ExcludeTransfers()
	inPeriod := flows.FilterByDateRange(start, end)
	income := inPeriod.FilterByType(models.Income)
	expenses := inPeriod.FilterByType(models.Expense)

	totalIncome := income.SumAmount()
	totalExpenses := expenses.SumAbsAmount()

	d := &models.Dashboard{
		StartDate:      start,
		EndDate:        end,
		TotalIncome:    totalIncome,
		TotalExpenses:  totalExpenses,
		Net:            totalIncome.Sub(totalExpenses),
		ExpenseByCat:   categorySummaries(expenses, totalExpenses),
		IncomeByCat:    categorySummaries(income, totalIncome),
		MonthlyTrend:   monthlyTrend(flows, today),
		TransactionCnt: inPeriod.Len(),
		Recent:         all.FilterByDateRange(start, end).SortByDateDesc().Head(RecentLimit).Transactions,
	}
	if d.Recent == nil {
		d.Recent = []models.Transaction{}
	}

	prevStart, prevEnd := PreviousRange(start, end)
	prev := flows.FilterByDateRange(prevStart, prevEnd)
	prevIncome := prev.FilterByType(models.Income).SumAmount()
	prevExpenses := prev.FilterByType(models.Expense).SumAbsAmount()
	d.Comparison = &models.PeriodComparison{
		PreviousStart:    prevStart,
		PreviousEnd:      prevEnd,
		PreviousIncome:   prevIncome,
		PreviousExpenses: prevExpenses,
		IncomeChange:     PercentChange(totalIncome, prevIncome),
		ExpensesChange:   PercentChange(totalExpenses, prevExpenses),
	}
	return d
}

func categorySummaries(set *models.TransactionSet, total decimal.Decimal) []models.CategorySummary {
	groups := set.GroupByCategory()
	out := make([]models.CategorySummary, 0, len(groups))
	for name, g := range groups {
		amount := g.SumAbsAmount()
		var pct float64
		if total.IsPositive() {
			pct = amount.Div(total).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		out = append(out, models.CategorySummary{
			Category:   name,
			Amount:     amount,
			Count:      g.Len(),
			Percentage: pct,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func trendStart(today models.Date) models.Date {
	return models.NewDate(today.Year(), today.Month()-(TrendMonths-1), 1)
}

// monthlyTrend returns one entry per month for the last TrendMonths
// months ending with today's month, including empty months.
func monthlyTrend(set *models.TransactionSet, today models.Date) []models.MonthlySummary {
	byMonth := set.GroupByMonth()
	first := trendStart(today)

	trend := make([]models.MonthlySummary, 0, TrendMonths)
	for i := 0; i < TrendMonths; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		m := models.MonthlySummary{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
		if g, ok := byMonth[key]; ok {
			m.Income = g.FilterByType(models.Income).SumAmount()
			m.Expenses = g.FilterByType(models.Expense).SumAbsAmount()
		}
		m.Net = m.Income.Sub(m.Expenses)
		trend = append(trend, m)
	}
	return trend
}

// PercentChange calculates the percentage change between two values
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}
