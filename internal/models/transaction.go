package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction is income or an expense
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Sign applies the sign convention of t to a positive amount.
func (t TransactionType) Sign(amount decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// Label returns the Indonesian label used in exports.
func (t TransactionType) Label() string {
	if t == Income {
		return "Pemasukan"
	}
	return "Pengeluaran"
}

// Source records which surface created a transaction.
type Source string

const (
	SourceWeb      Source = "web"
	SourceTelegram Source = "telegram"
)

// Transaction represents a single ledger entry. Amount is signed:
// negative for expenses, positive for income.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	WalletID   uuid.UUID       `json:"wallet_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       Date            `json:"date"`
	Note       string          `json:"note,omitempty"`
	Source     Source          `json:"source"`
	TransferID uuid.NullUUID   `json:"transfer_id"`
	CreatedAt  time.Time       `json:"created_at"`

	// Joined from wallets and categories on read
	WalletName    string          `json:"wallet_name,omitempty"`
	WalletAcronym string          `json:"wallet_acronym,omitempty"`
	WalletColor   string          `json:"wallet_color,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	CategoryType  TransactionType `json:"category_type,omitempty"`
}

// Type derives the transaction type from the sign of the amount.
func (t *Transaction) Type() TransactionType {
	if t.Amount.IsNegative() {
		return Expense
	}
	return Income
}

// AbsAmount returns the absolute value of the amount
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsTransfer reports whether the transaction is one leg of a transfer.
func (t *Transaction) IsTransfer() bool {
	return t.TransferID.Valid
}

// Month returns the "2006-01" key of the transaction date.
func (t *Transaction) Month() string {
	return t.Date.Format("2006-01")
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type     TransactionType
	WalletID uuid.NullUUID
	From     *Date
	To       *Date
	Limit    int
}

// TransactionSet wraps a slice with filtering/aggregation methods
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// FilterByType returns transactions of the specified type
func (ts *TransactionSet) FilterByType(tt TransactionType) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.Type() == tt {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByDateRange returns transactions within the date range (inclusive)
func (ts *TransactionSet) FilterByDateRange(start, end Date) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if !t.Date.Before(start.Time) && !t.Date.After(end.Time) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByWallet returns transactions posted to the wallet
func (ts *TransactionSet) FilterByWallet(walletID uuid.UUID) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.WalletID == walletID {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// ExcludeTransfers drops transfer legs, which move money without earning
// or spending it.
func (ts *TransactionSet) ExcludeTransfers() *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if !t.IsTransfer() {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// SumAmount returns the sum of all transaction amounts
func (ts *TransactionSet) SumAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range ts.Transactions {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// SumAbsAmount returns the sum of absolute values
func (ts *TransactionSet) SumAbsAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range ts.Transactions {
		sum = sum.Add(t.Amount.Abs())
	}
	return sum
}

// GroupByMonth groups transactions by month
func (ts *TransactionSet) GroupByMonth() map[string]*TransactionSet {
	result := make(map[string]*TransactionSet)
	for _, t := range ts.Transactions {
		month := t.Month()
		if result[month] == nil {
			result[month] = &TransactionSet{}
		}
		result[month].Transactions = append(result[month].Transactions, t)
	}
	return result
}

// GroupByCategory groups transactions by category name
func (ts *TransactionSet) GroupByCategory() map[string]*TransactionSet {
	result := make(map[string]*TransactionSet)
	for _, t := range ts.Transactions {
		cat := t.CategoryName
		if cat == "" {
			cat = "Lainnya"
		}
		if result[cat] == nil {
			result[cat] = &TransactionSet{}
		}
		result[cat].Transactions = append(result[cat].Transactions, t)
	}
	return result
}

// SortByDateDesc sorts transactions newest first
func (ts *TransactionSet) SortByDateDesc() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date.Time) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	return &TransactionSet{Transactions: sorted}
}

// CategoryTotals returns a map of category -> absolute total
func (ts *TransactionSet) CategoryTotals() map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal)
	for cat, set := range ts.GroupByCategory() {
		result[cat] = set.SumAbsAmount()
	}
	return result
}

// Head returns at most n transactions
func (ts *TransactionSet) Head(n int) *TransactionSet {
	if n < 0 || n >= len(ts.Transactions) {
		return ts
	}
	return &TransactionSet{Transactions: ts.Transactions[:n]}
}

// Describe renders a short one-line summary, used in logs.
func (t *Transaction) Describe() string {
	parts := []string{string(t.Type()), t.Amount.String()}
	if t.WalletName != "" {
		parts = append(parts, t.WalletName)
	}
	if t.CategoryName != "" {
		parts = append(parts, t.CategoryName)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
