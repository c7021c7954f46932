package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/store"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned for unknown or foreign rows.
	ErrNotFound = store.ErrNotFound
	// ErrWalletNotFound matches every *WalletNotFoundError.
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrSameWallet           = errors.New("source and target wallet must differ")
	ErrInsufficientFunds    = store.ErrInsufficientFunds
	ErrInvalidAmount        = errors.New("amount must be greater than zero with at most two decimals")
	ErrInvalidBalance       = errors.New("balance allows at most two decimals")
	ErrInvalidType          = errors.New("type must be income or expense")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrCategoryExists       = errors.New("category already exists")
	ErrNameRequired         = errors.New("name is required")
	ErrInUse                = errors.New("still referenced by transactions")
)

// validAmount reports whether d can be written as a transaction amount:
// positive and exact to the cent, so the stored row and the balance move
// by the same value.
func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

func validBalance(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// WalletRole tells which side of an operation a wallet was named for.
type WalletRole string

const (
	RoleWallet WalletRole = ""
	RoleSource WalletRole = "source"
	RoleTarget WalletRole = "target"
)

// WalletNotFoundError reports a wallet name that matched none of the
// user's wallets, with the names that would have.
type WalletNotFoundError struct {
	Name      string
	Role      WalletRole
	Available []string
}

func (e *WalletNotFoundError) Error() string {
	role := "wallet"
	if e.Role != RoleWallet {
		role = string(e.Role) + " wallet"
	}
	return fmt.Sprintf("%s %q not found (available: %s)", role, e.Name, strings.Join(e.Available, ", "))
}

func (e *WalletNotFoundError) Is(target error) bool {
	return target == ErrWalletNotFound
}
