package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWalletColor is used when a wallet is created without a color.
const DefaultWalletColor = "#6366f1"

// Wallet is a named store of funds with a running balance.
type Wallet struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Acronym        string          `json:"acronym"`
	Color          string          `json:"color"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NormalizeAcronym upper-cases and trims a wallet acronym.
func NormalizeAcronym(acronym string) string {
	return strings.ToUpper(strings.TrimSpace(acronym))
}

// WalletNames returns the wallet names in order.
func WalletNames(wallets []Wallet) []string {
	names := make([]string, 0, len(wallets))
	for _, w := range wallets {
		names = append(names, w.Name)
	}
	return names
}

// TotalBalance sums the balances of the given wallets.
func TotalBalance(wallets []Wallet) decimal.Decimal {
	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(w.Balance)
	}
	return total
}

// WalletDrift reports how far a stored balance is from what its
// transactions imply.
type WalletDrift struct {
	WalletID uuid.UUID       `json:"wallet_id"`
	Name     string          `json:"name"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
	Drift    decimal.Decimal `json:"drift"`
	Fixed    bool            `json:"fixed"`
}
