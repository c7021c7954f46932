package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
	"github.com/fanzirfan/MyFinance/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(amount string, date models.Date, category string) models.Transaction {
	return models.Transaction{ID: uuid.New(), Amount: dec(amount), Date: date, CategoryName: category}
}

func TestPeriodRange(t *testing.T) {
	today := models.NewDate(2024, time.March, 15)

	tests := []struct {
		period    models.Period
		wantStart string
	}{
		{models.PeriodWeek, "2024-03-08"},
		{models.PeriodMonth, "2024-03-01"},
		{models.PeriodYear, "2024-01-01"},
	}
	for _, tt := range tests {
		start, end := PeriodRange(tt.period, today)
		if start.String() != tt.wantStart || end.String() != "2024-03-15" {
			t.Errorf("PeriodRange(%s) = %s..%s, want %s..2024-03-15", tt.period, start, end, tt.wantStart)
		}
	}

	prevStart, prevEnd := PreviousRange(models.NewDate(2024, time.March, 1), today)
	if prevStart.String() != "2024-02-15" || prevEnd.String() != "2024-02-29" {
		t.Errorf("PreviousRange = %s..%s", prevStart, prevEnd)
	}
}

func TestCalculate(t *testing.T) {
	today := models.NewDate(2024, time.March, 15)
	start, end := PeriodRange(models.PeriodMonth, today)

	transfer := tx("-100000", models.NewDate(2024, time.March, 5), models.TransferOutCategory)
	transfer.TransferID = uuid.NullUUID{UUID: uuid.New(), Valid: true}

	set := models.NewTransactionSet([]models.Transaction{
		tx("5000000", models.NewDate(2024, time.March, 1), "Gaji"),
		tx("-150000", models.NewDate(2024, time.March, 2), "Makan"),
		tx("-50000", models.NewDate(2024, time.March, 10), "Transport"),
		tx("-100000", models.NewDate(2024, time.March, 12), "Makan"),
		transfer,
		tx("-200000", models.NewDate(2024, time.February, 20), "Makan"),
		tx("4000000", models.NewDate(2024, time.January, 25), "Gaji"),
	})

	d := Calculate(set, start, end, today)

	if !d.TotalIncome.Equal(dec("5000000")) {
		t.Errorf("TotalIncome = %s", d.TotalIncome)
	}
	if !d.TotalExpenses.Equal(dec("300000")) {
		t.Errorf("TotalExpenses = %s, transfers must not count", d.TotalExpenses)
	}
	if !d.Net.Equal(dec("4700000")) {
		t.Errorf("Net = %s", d.Net)
	}
	if d.TransactionCnt != 4 {
		t.Errorf("TransactionCnt = %d, want 4", d.TransactionCnt)
	}

	if len(d.ExpenseByCat) != 2 {
		t.Fatalf("ExpenseByCat = %+v", d.ExpenseByCat)
	}
	top := d.ExpenseByCat[0]
	if top.Category != "Makan" || !top.Amount.Equal(dec("250000")) || top.Count != 2 {
		t.Errorf("top expense category = %+v", top)
	}
	if top.Percentage != 83.3 {
		t.Errorf("Makan percentage = %v, want 83.3", top.Percentage)
	}

	if len(d.MonthlyTrend) != TrendMonths {
		t.Fatalf("trend has %d months, want %d", len(d.MonthlyTrend), TrendMonths)
	}
	if first := d.MonthlyTrend[0]; first.Month != "2023-10" || !first.Net.IsZero() {
		t.Errorf("first trend month = %+v", first)
	}
	last := d.MonthlyTrend[TrendMonths-1]
	if last.Month != "2024-03" || !last.Expenses.Equal(dec("300000")) {
		t.Errorf("last trend month = %+v", last)
	}
	if jan := d.MonthlyTrend[3]; jan.Month != "2024-01" || !jan.Income.Equal(dec("4000000")) {
		t.Errorf("January trend = %+v", jan)
	}

	if len(d.Recent) != 5 || d.Recent[0].Date.String() != "2024-03-12" {
		t.Errorf("recent = %d rows, first %v", len(d.Recent), d.Recent)
	}

	c := d.Comparison
	if c == nil || !c.PreviousExpenses.Equal(dec("200000")) || c.ExpensesChange != 50 {
		t.Errorf("comparison = %+v", c)
	}
	if c != nil && c.IncomeChange != 100 {
		t.Errorf("income change with no previous income = %v, want 100", c.IncomeChange)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		current, previous string
		want              float64
	}{
		{"0", "0", 0},
		{"10", "0", 100},
		{"150", "100", 50},
		{"50", "100", -50},
		{"1", "3", -66.7},
	}
	for _, tt := range tests {
		if got := PercentChange(dec(tt.current), dec(tt.previous)); got != tt.want {
			t.Errorf("PercentChange(%s, %s) = %v, want %v", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestDashboardFromStore(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	user := uuid.New()
	bca := testutil.MustWallet(t, s, user, "BCA", 1_000_000)
	gopay := testutil.MustWallet(t, s, user, "GoPay", 100_000)

	led := ledger.New(s, time.UTC)
	record := func(typ models.TransactionType, amount int64, wallet, category string) {
		t.Helper()
		_, err := led.Record(ctx, ledger.RecordInput{
			UserID:   user,
			Type:     typ,
			Amount:   decimal.NewFromInt(amount),
			Wallet:   ledger.WalletRef{Name: wallet},
			Category: ledger.CategoryRef{Name: category},
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	record(models.Expense, 50_000, "BCA", "Makan")
	record(models.Expense, 20_000, "GoPay", "Transport")
	record(models.Income, 300_000, "BCA", "Bonus")

	svc := New(s, time.UTC)

	d, err := svc.Dashboard(ctx, user, models.PeriodMonth, uuid.NullUUID{})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !d.Balance.Equal(dec("1330000")) {
		t.Errorf("Balance = %s, want 1330000", d.Balance)
	}
	if !d.TotalExpenses.Equal(dec("70000")) || !d.TotalIncome.Equal(dec("300000")) {
		t.Errorf("totals = %s / %s", d.TotalIncome, d.TotalExpenses)
	}
	if d.WalletCount != 2 || d.Period != models.PeriodMonth {
		t.Errorf("dashboard = %+v", d)
	}

	d, err = svc.Dashboard(ctx, user, models.PeriodWeek, uuid.NullUUID{UUID: gopay.ID, Valid: true})
	if err != nil {
		t.Fatalf("Dashboard(gopay): %v", err)
	}
	if !d.Balance.Equal(dec("80000")) || !d.TotalExpenses.Equal(dec("20000")) || !d.TotalIncome.IsZero() {
		t.Errorf("GoPay dashboard balance %s expenses %s income %s", d.Balance, d.TotalExpenses, d.TotalIncome)
	}

	_, err = svc.Dashboard(ctx, uuid.New(), models.PeriodMonth, uuid.NullUUID{UUID: bca.ID, Valid: true})
	if !errors.Is(err, ErrUnknownWallet) {
		t.Errorf("foreign wallet err = %v, want ErrUnknownWallet", err)
	}
}
