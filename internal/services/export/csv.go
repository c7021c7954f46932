package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/models"
)

// BOM makes spreadsheet programs read the file as UTF-8.
const BOM = "\uFEFF"

// CSVDateLayout is the day/month/year format used in the Tanggal column.
const CSVDateLayout = "2/1/2006"

// CSVHeader is the header row of the transaction section.
var CSVHeader = []string{"Tanggal", "Wallet", "Kategori", "Tipe", "Jumlah", "Catatan"}

// Section markers following the transaction rows.
const (
	SummaryMarker = "RINGKASAN"
	WalletMarker  = "SALDO WALLET"
)

// WriteCSV writes the statement as CSV: the transactions, a summary
// section and the wallet balances, separated by blank rows. Amounts are
// written as exact decimals.
func WriteCSV(w io.Writer, s *Statement) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	rows := [][]string{CSVHeader}
	for _, tx := range s.Transactions {
		rows = append(rows, []string{
			tx.Date.Format(CSVDateLayout),
			orDash(tx.WalletName),
			orDash(tx.CategoryName),
			tx.Type().Label(),
			tx.AbsAmount().String(),
			orDash(oneLine(tx.Note)),
		})
	}

	income, expense := s.Totals()
	rows = append(rows,
		nil,
		[]string{SummaryMarker},
		[]string{"Total Pemasukan", "", "", models.Income.Label(), income.String(), ""},
		[]string{"Total Pengeluaran", "", "", models.Expense.Label(), expense.String(), ""},
		[]string{"Selisih", "", "", "", income.Sub(expense).String(), ""},
		nil,
		[]string{WalletMarker},
	)
	for _, w := range s.Wallets {
		rows = append(rows, []string{w.Name, w.Acronym, "", "", w.Balance.String(), ""})
	}

	// nil rows come out as blank lines
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
