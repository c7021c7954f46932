// Package money parses and renders Indonesian Rupiah amounts.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for amounts that cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositive is returned for zero or negative amounts.
	ErrNonPositive = errors.New("amount must be greater than zero")
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

var amountPattern = regexp.MustCompile(`^([0-9][0-9.,]*)\s*(k|rb|ribu|jt|juta|m|miliar)?$`)

// ParseAmount parses a positive amount written the way people type it in
// chat: "50rb", "5jt", "1,5jt", "Rp 50.000", "50000", "12.500,75".
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, "rp.")
	raw = strings.TrimPrefix(raw, "rp")
	raw = strings.TrimSpace(raw)

	m := amountPattern.FindStringSubmatch(raw)
	if m == nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	value, err := parseNumber(m[1], m[2] != "")
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	switch m[2] {
	case "k", "rb", "ribu":
		value = value.Mul(thousand)
	case "jt", "juta":
		value = value.Mul(million)
	case "m", "miliar":
		value = value.Mul(billion)
	}

	if !value.IsPositive() {
		return decimal.Zero, ErrNonPositive
	}
	return value, nil
}

// parseNumber reads a number using "." for thousands and "," for decimals.
// With a multiplier suffix a single "." is read as a decimal point, so
// "1.5jt" means one and a half million.
func parseNumber(s string, scaled bool) (decimal.Decimal, error) {
	if strings.Count(s, ",") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	if scaled && !strings.Contains(s, ",") && strings.Count(s, ".") == 1 {
		return decimal.NewFromString(s)
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ",")
	if strings.Contains(intPart, ".") && !validGrouping(intPart) {
		return decimal.Zero, ErrInvalidAmount
	}
	intPart = strings.ReplaceAll(intPart, ".", "")
	if intPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if hasFrac {
		if fracPart == "" || strings.Contains(fracPart, ".") {
			return decimal.Zero, ErrInvalidAmount
		}
		return decimal.NewFromString(intPart + "." + fracPart)
	}
	return decimal.NewFromString(intPart)
}

func validGrouping(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// Amount is a positive decimal that decodes from a JSON number or from a
// string accepted by ParseAmount.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, n)
		}
		a.Decimal = d
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	d, err := ParseAmount(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Decimal.MarshalJSON()
}

// FormatIDR renders an amount as Rupiah: "Rp 50.000", "Rp 1.250,50",
// "-Rp 20.000". Fractions are shown only when non-zero.
func FormatIDR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	d = d.Round(2)
	intPart := d.Truncate(0)
	frac := d.Sub(intPart)

	out := sign + "Rp " + groupThousands(intPart.String())
	if !frac.IsZero() {
		cents := frac.Shift(2).IntPart()
		out += fmt.Sprintf(",%02d", cents)
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
