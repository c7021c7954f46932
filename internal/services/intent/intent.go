// Package intent turns a free-text chat message into a structured
// transaction intent, either through keyword rules or a language model.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/money"
	"github.com/shopspring/decimal"
)

// Type is the kind of request a message expresses.
type Type string

const (
	Expense      Type = "expense"
	Income       Type = "income"
	Transfer     Type = "transfer"
	CheckBalance Type = "check_balance"
)

// Types lists every intent type in the order the classifier is told.
var Types = []Type{Expense, Income, Transfer, CheckBalance}

// ErrUnparseable is returned when classifier output does not satisfy the
// intent schema.
var ErrUnparseable = errors.New("classifier output does not match the intent schema")

// Intent is the validated classifier answer.
type Intent struct {
	Type     Type
	Amount   decimal.Decimal
	Wallet   string
	ToWallet string
	Category string
	Note     string
}

// Classifier turns a message into an Intent.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Intent, error)
}

// Request carries the message and the names the classifier should pick from.
type Request struct {
	Text       string
	Wallets    []string
	Categories []string
}

// rawIntent is the loosely typed JSON a model returns.
type rawIntent struct {
	Type     string          `json:"type"`
	Amount   json.RawMessage `json:"amount"`
	Wallet   *string         `json:"wallet"`
	ToWallet *string         `json:"to_wallet"`
	Category *string         `json:"category"`
	Note     *string         `json:"note"`
}

// ParseIntent validates raw classifier output. Markdown code fences are
// stripped; the amount may be a JSON number or a shorthand string such as
// "50rb". Wallet is required except for balance checks, to_wallet for
// transfers, and category for income and expense.
func ParseIntent(raw string) (*Intent, error) {
	cleaned := stripFences(raw)

	var r rawIntent
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	in := &Intent{
		Type:     Type(strings.ToLower(strings.TrimSpace(r.Type))),
		Wallet:   str(r.Wallet),
		ToWallet: str(r.ToWallet),
		Category: str(r.Category),
		Note:     str(r.Note),
	}

	switch in.Type {
	case Expense, Income, Transfer, CheckBalance:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrUnparseable, r.Type)
	}

	if in.Type == CheckBalance {
		return in, nil
	}

	amount, err := parseRawAmount(r.Amount)
	if err != nil {
		return nil, err
	}
	in.Amount = amount

	if in.Wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrUnparseable)
	}

	switch in.Type {
	case Transfer:
		if in.ToWallet == "" {
			return nil, ErrMissingTarget
		}
	default:
		if in.Category == "" {
			return nil, fmt.Errorf("%w: category is required", ErrUnparseable)
		}
	}
	return in, nil
}

// ErrMissingTarget is returned for a transfer without a target wallet.
var ErrMissingTarget = fmt.Errorf("%w: transfer requires to_wallet", ErrUnparseable)

func parseRawAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrUnparseable)
	}
	var a money.Amount
	if err := json.Unmarshal(raw, &a); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if !a.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrUnparseable)
	}
	return a.Decimal, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
