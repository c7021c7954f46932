package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/money"
	"github.com/phpdave11/gofpdf"
)

// MaxPDFRows caps the statement table; longer exports are truncated.
const MaxPDFRows = 500

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"TANGGAL", 24, "C"},
	{"WALLET", 30, "L"},
	{"KATEGORI", 34, "L"},
	{"CATATAN", 62, "L"},
	{"JUMLAH", 32, "R"},
}

// WritePDF renders the statement as an A4 PDF: a summary box followed by
// a paged transaction table.
func WritePDF(w io.Writer, s *Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle("MyFinance Statement", true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("MyFinance - %s - hal. %d",
			s.GeneratedAt.Format("02/01/2006 15:04"), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Laporan Keuangan MyFinance")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Periode: "+periodLabel(s))
	pdf.Ln(10)

	income, expense := s.Totals()
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	sumW := 60.6
	pdf.CellFormat(sumW, 9, "Pemasukan", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW, 9, "Pengeluaran", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW, 9, "Selisih", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW, 9, money.FormatIDR(income), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW, 9, money.FormatIDR(expense), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW, 9, money.FormatIDR(income.Sub(expense)), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	if len(s.Wallets) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, "Saldo Wallet")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		for _, wlt := range s.Wallets {
			pdf.CellFormat(60, 6, tr(wlt.Name), "B", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, money.FormatIDR(wlt.Balance), "B", 1, "R", false, 0, "")
		}
		pdf.CellFormat(60, 6, "Total", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money.FormatIDR(models.TotalBalance(s.Wallets)), "", 1, "R", false, 0, "")
		pdf.Ln(6)
	}

	tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	for i, tx := range s.Transactions {
		if i >= MaxPDFRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 7, fmt.Sprintf("... %d transaksi lainnya tidak ditampilkan", len(s.Transactions)-i),
				"1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}

		amount := money.FormatIDR(tx.Amount)
		if tx.Amount.IsPositive() {
			amount = "+" + amount
		}
		cells := []string{
			tx.Date.Format("02/01/2006"),
			tr(trimTo(tx.WalletName, 18)),
			tr(trimTo(tx.CategoryName, 20)),
			tr(trimTo(oneLine(tx.Note), 38)),
			amount,
		}
		last := len(pdfColumns) - 1
		for j, col := range pdfColumns {
			ln := 0
			pdf.SetTextColor(30, 30, 30)
			if j == last {
				ln = 1
				if tx.Amount.IsPositive() {
					pdf.SetTextColor(22, 130, 60)
				} else {
					pdf.SetTextColor(190, 40, 40)
				}
			}
			pdf.CellFormat(col.width, 7, cells[j], "1", ln, col.align, false, 0, "")
		}
	}
	pdf.SetTextColor(30, 30, 30)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)
	for i, col := range pdfColumns {
		ln := 0
		if i == len(pdfColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 8, col.title, "1", ln, "C", true, 0, "")
	}
}

func periodLabel(s *Statement) string {
	switch {
	case s.From != nil && s.To != nil:
		return s.From.Format("02/01/2006") + " - " + s.To.Format("02/01/2006")
	case s.From != nil:
		return "sejak " + s.From.Format("02/01/2006")
	case s.To != nil:
		return "sampai " + s.To.Format("02/01/2006")
	}
	return "semua transaksi"
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
