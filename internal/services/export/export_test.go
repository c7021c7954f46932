package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
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

func sampleStatement() *Statement {
	return &Statement{
		GeneratedAt: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC),
		Transactions: []models.Transaction{
			{Amount: dec("-50000"), Date: models.NewDate(2024, time.March, 14), WalletName: "BCA", CategoryName: "Makan", Note: "makan siang, kantor"},
			{Amount: dec("5000000"), Date: models.NewDate(2024, time.March, 1), WalletName: "Mandiri", CategoryName: "Gaji"},
			{Amount: dec("-12500.75"), Date: models.NewDate(2024, time.February, 9), WalletName: "GoPay", CategoryName: "Transport", Note: "ojol\npulang"},
		},
		Wallets: []models.Wallet{
			{Name: "BCA", Acronym: "BCA", Balance: dec("950000")},
			{Name: "GoPay", Acronym: "GP", Balance: dec("87499.25")},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleStatement()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := BOM +
		"Tanggal,Wallet,Kategori,Tipe,Jumlah,Catatan\r\n" +
		"14/3/2024,BCA,Makan,Pengeluaran,50000,\"makan siang, kantor\"\r\n" +
		"1/3/2024,Mandiri,Gaji,Pemasukan,5000000,-\r\n" +
		"9/2/2024,GoPay,Transport,Pengeluaran,12500.75,ojol pulang\r\n" +
		"\r\n" +
		"RINGKASAN\r\n" +
		"Total Pemasukan,,,Pemasukan,5000000,\r\n" +
		"Total Pengeluaran,,,Pengeluaran,62500.75,\r\n" +
		"Selisih,,,,4937499.25,\r\n" +
		"\r\n" +
		"SALDO WALLET\r\n" +
		"BCA,BCA,,,950000,\r\n" +
		"GoPay,GP,,,87499.25,\r\n"

	if got := buf.String(); got != want {
		t.Errorf("WriteCSV output mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	s := sampleStatement()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != len(s.Transactions) {
		t.Fatalf("got %d rows, want %d", len(rows), len(s.Transactions))
	}

	for i, row := range rows {
		tx := s.Transactions[i]
		if !row.SignedAmount().Equal(tx.Amount) {
			t.Errorf("row %d amount = %s, want %s", i, row.SignedAmount(), tx.Amount)
		}
		if !row.Date.Equal(tx.Date.Time) {
			t.Errorf("row %d date = %s, want %s", i, row.Date, tx.Date)
		}
		if row.Wallet != tx.WalletName || row.Category != tx.CategoryName {
			t.Errorf("row %d = %+v", i, row)
		}
	}
	if rows[0].Note != "makan siang, kantor" || rows[1].Note != "" {
		t.Errorf("notes = %q, %q", rows[0].Note, rows[1].Note)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing column", "Tanggal,Wallet,Kategori\n1/1/2024,BCA,Makan\n"},
		{"bad date", "Tanggal,Wallet,Kategori,Tipe,Jumlah,Catatan\n2024/13/45,BCA,Makan,Pengeluaran,1000,-\n"},
		{"bad type", "Tanggal,Wallet,Kategori,Tipe,Jumlah,Catatan\n1/1/2024,BCA,Makan,Hutang,1000,-\n"},
		{"bad amount", "Tanggal,Wallet,Kategori,Tipe,Jumlah,Catatan\n1/1/2024,BCA,Makan,Pengeluaran,seribu,-\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseCSVAcceptsEnglishHeaders(t *testing.T) {
	in := "date,wallet,category,type,amount,note\n2024-03-01,BCA,Makan,expense,1500.5,kopi\n"
	rows, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 1 || !rows[0].SignedAmount().Equal(dec("-1500.5")) || rows[0].Date.String() != "2024-03-01" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleStatement()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWritePDFPagesLongStatements(t *testing.T) {
	var short bytes.Buffer
	if err := WritePDF(&short, sampleStatement()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}

	s := sampleStatement()
	for i := 0; i < 120; i++ {
		s.Transactions = append(s.Transactions, models.Transaction{
			Amount: dec("-1000"), Date: models.NewDate(2024, time.January, 1), WalletName: "BCA", CategoryName: "Makan",
		})
	}
	var long bytes.Buffer
	if err := WritePDF(&long, s); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if long.Len() <= short.Len() {
		t.Errorf("long statement (%d bytes) not larger than short one (%d bytes)", long.Len(), short.Len())
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	user := uuid.New()
	testutil.MustWallet(t, s, user, "BCA", 100_000)
	now := time.Now()

	if _, err := Load(ctx, s, user, nil, nil, now); !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("Load with no transactions err = %v", err)
	}

	led := ledger.New(s, time.UTC)
	if _, err := led.Record(ctx, ledger.RecordInput{
		UserID: user, Type: models.Expense, Amount: dec("2500.25"),
		Wallet: ledger.WalletRef{Name: "BCA"}, Category: ledger.CategoryRef{Name: "Makan"},
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	st, err := Load(ctx, s, user, nil, nil, now)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Transactions) != 1 || len(st.Wallets) != 1 {
		t.Fatalf("statement = %+v", st)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, st); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if !rows[0].SignedAmount().Equal(dec("-2500.25")) || rows[0].Category != "Makan" {
		t.Errorf("round trip row = %+v", rows[0])
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(models.NewDate(2024, time.March, 5), "csv"); got != "MyFinance_Export_2024-03-05.csv" {
		t.Errorf("FileName = %s", got)
	}
}
