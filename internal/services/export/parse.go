package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/shopspring/decimal"
)

// Row is one transaction line read back from an exported CSV file.
type Row struct {
	Line     int
	Date     models.Date
	Wallet   string
	Category string
	Type     models.TransactionType
	Amount   decimal.Decimal
	Note     string
}

// SignedAmount applies the row type to the positive amount.
func (r Row) SignedAmount() decimal.Decimal {
	return r.Type.Sign(r.Amount)
}

// columnMappings maps accepted header names to the standard column names
var columnMappings = map[string][]string{
	"Tanggal":  {"tanggal", "date"},
	"Wallet":   {"wallet", "dompet"},
	"Kategori": {"kategori", "category"},
	"Tipe":     {"tipe", "type"},
	"Jumlah":   {"jumlah", "amount", "nominal"},
	"Catatan":  {"catatan", "note", "keterangan"},
}

var requiredColumns = []string{"Tanggal", "Wallet", "Tipe", "Jumlah"}

// normalizeColumnName maps a header cell to its standard name
func normalizeColumnName(col string) string {
	col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, BOM)))
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if col == variant {
				return standard
			}
		}
	}
	return col
}

// buildColumnIndex creates a normalized column index from CSV headers
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumnName(col)
		// first match wins
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// ParseCSV reads the transaction section of an exported CSV file. Reading
// stops at the summary section. Any malformed row fails the whole parse.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	colIndex := buildColumnIndex(header)
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) > 0 && strings.TrimSpace(record[0]) == SummaryMarker {
			break
		}

		row, err := parseRow(record, colIndex)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, colIndex map[string]int) (Row, error) {
	field := func(name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var row Row
	date, err := parseDate(field("Tanggal"))
	if err != nil {
		return row, err
	}
	row.Date = date

	switch strings.ToLower(field("Tipe")) {
	case "pemasukan", "income":
		row.Type = models.Income
	case "pengeluaran", "expense":
		row.Type = models.Expense
	default:
		return row, fmt.Errorf("unknown type %q", field("Tipe"))
	}

	amount, err := decimal.NewFromString(field("Jumlah"))
	if err != nil {
		return row, fmt.Errorf("invalid amount %q", field("Jumlah"))
	}
	row.Amount = amount.Abs()

	row.Wallet = undash(field("Wallet"))
	row.Category = undash(field("Kategori"))
	row.Note = undash(field("Catatan"))
	return row, nil
}

// parseDate tries the export layout first, then ISO dates
func parseDate(s string) (models.Date, error) {
	for _, layout := range []string{CSVDateLayout, "02/01/2006", models.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("invalid date %q", s)
}

func undash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
