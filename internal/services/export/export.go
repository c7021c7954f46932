// Package export renders a user's ledger as a CSV file or a PDF statement
// and reads exported CSV files back.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNoTransactions is returned when there is nothing to export.
var ErrNoTransactions = errors.New("tidak ada data transaksi untuk diekspor")

// Source is the data an export reads.
type Source interface {
	ListWallets(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
}

// Statement is everything an export file contains.
type Statement struct {
	UserID       uuid.UUID
	From, To     *models.Date
	GeneratedAt  time.Time
	Transactions []models.Transaction
	Wallets      []models.Wallet
}

// Load reads a user's transactions (newest first, optionally limited to
// a date range) and wallets.
func Load(ctx context.Context, db Source, userID uuid.UUID, from, to *models.Date, now time.Time) (*Statement, error) {
	txs, err := db.ListTransactions(ctx, userID, models.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	wallets, err := db.ListWallets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	return &Statement{
		UserID:       userID,
		From:         from,
		To:           to,
		GeneratedAt:  now,
		Transactions: txs,
		Wallets:      wallets,
	}, nil
}

// Totals returns total income and expense as positive amounts, counted by
// transaction type, transfer legs included.
func (s *Statement) Totals() (income, expense decimal.Decimal) {
	set := models.NewTransactionSet(s.Transactions)
	return set.FilterByType(models.Income).SumAbsAmount(), set.FilterByType(models.Expense).SumAbsAmount()
}

// FileName returns the download name for a format ("csv" or "pdf").
func FileName(day models.Date, format string) string {
	return fmt.Sprintf("MyFinance_Export_%s.%s", day.String(), format)
}
