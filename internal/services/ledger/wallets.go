package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletInput holds the fields of a new wallet.
type WalletInput struct {
	Name    string
	Acronym string
	Color   string
	Balance decimal.Decimal
}

// WalletUpdate holds the fields to change; nil fields are left alone.
type WalletUpdate struct {
	Name    *string
	Acronym *string
	Color   *string
	Balance *decimal.Decimal
}

func (s *Service) ListWallets(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error) {
	return s.db.ListWallets(ctx, userID)
}

func (s *Service) GetWallet(ctx context.Context, userID, id uuid.UUID) (models.Wallet, error) {
	return s.db.GetWallet(ctx, userID, id)
}

// CreateWallet adds a wallet. Its opening balance is the initial balance.
func (s *Service) CreateWallet(ctx context.Context, userID uuid.UUID, in WalletInput) (models.Wallet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Wallet{}, ErrNameRequired
	}
	if !validBalance(in.Balance) {
		return models.Wallet{}, ErrInvalidBalance
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultWalletColor
	}

	w := models.Wallet{
		UserID:         userID,
		Name:           name,
		Acronym:        models.NormalizeAcronym(in.Acronym),
		Color:          color,
		Balance:        in.Balance,
		OpeningBalance: in.Balance,
	}
	if err := s.db.CreateWallet(ctx, &w); err != nil {
		return models.Wallet{}, err
	}
	return w, nil
}

// UpdateWallet edits a wallet. Setting the balance directly shifts the
// opening balance by the same amount so the transaction history still
// adds up.
func (s *Service) UpdateWallet(ctx context.Context, userID, id uuid.UUID, in WalletUpdate) (models.Wallet, error) {
	var updated models.Wallet
	err := s.db.WithTx(ctx, func(q store.Querier) error {
		w, err := q.GetWallet(ctx, userID, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrNameRequired
			}
			w.Name = name
		}
		if in.Acronym != nil {
			w.Acronym = models.NormalizeAcronym(*in.Acronym)
		}
		if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
			w.Color = strings.TrimSpace(*in.Color)
		}
		if in.Balance != nil {
			if !validBalance(*in.Balance) {
				return ErrInvalidBalance
			}
			w.OpeningBalance = w.OpeningBalance.Add(in.Balance.Sub(w.Balance))
			w.Balance = *in.Balance
		}
		if err := q.UpdateWallet(ctx, w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	return updated, err
}

// DeleteWallet removes a wallet that no transaction references.
func (s *Service) DeleteWallet(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(q store.Querier) error {
		if _, err := q.GetWallet(ctx, userID, id); err != nil {
			return err
		}
		n, err := q.CountWalletTransactions(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		return q.DeleteWallet(ctx, userID, id)
	})
}

// BalanceReport answers a balance question for one or all wallets.
type BalanceReport struct {
	Wallets []models.Wallet
	Total   decimal.Decimal
	// Single is set when a specific wallet was asked for.
	Single *models.Wallet
}

// CheckBalance re-reads balances. An empty name, "all" or "semua" reports
// every wallet with the total; otherwise the name is matched exactly, then
// loosely, ignoring case.
func (s *Service) CheckBalance(ctx context.Context, userID uuid.UUID, name string) (*BalanceReport, error) {
	wallets, err := s.db.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &BalanceReport{Wallets: wallets, Total: models.TotalBalance(wallets)}

	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" || query == "all" || query == "semua" {
		return report, nil
	}

	if w, ok := matchWallet(wallets, query); ok {
		report.Single = &w
		return report, nil
	}
	return nil, &WalletNotFoundError{Name: strings.TrimSpace(name), Available: models.WalletNames(wallets)}
}

func matchWallet(wallets []models.Wallet, query string) (models.Wallet, bool) {
	for _, w := range wallets {
		if strings.ToLower(w.Name) == query {
			return w, true
		}
	}
	if w, ok := longestMatch(wallets, func(name string) bool {
		return strings.Contains(name, query) || strings.Contains(query, name)
	}); ok {
		return w, true
	}
	// Last word of the query, so "saldo di bank jago" still finds "Jago".
	if fields := strings.Fields(query); len(fields) > 1 {
		last := fields[len(fields)-1]
		return longestMatch(wallets, func(name string) bool {
			return strings.Contains(name, last)
		})
	}
	return models.Wallet{}, false
}

// longestMatch returns the wallet with the longest lower-cased name that
// satisfies match, so "BCA Syariah" wins over "BCA".
func longestMatch(wallets []models.Wallet, match func(name string) bool) (models.Wallet, bool) {
	var best models.Wallet
	bestLen := 0
	for _, w := range wallets {
		lower := strings.ToLower(w.Name)
		if lower != "" && match(lower) && len(lower) > bestLen {
			best, bestLen = w, len(lower)
		}
	}
	return best, bestLen > 0
}

// Reconcile compares each stored balance with its opening balance plus the
// sum of its transactions. With fix set, drifted balances are rewritten.
func (s *Service) Reconcile(ctx context.Context, userID uuid.UUID, fix bool) ([]models.WalletDrift, error) {
	var drifts []models.WalletDrift
	err := s.db.WithTx(ctx, func(q store.Querier) error {
		wallets, err := q.ListWallets(ctx, userID)
		if err != nil {
			return err
		}
		sums, err := q.SumTransactionsByWallet(ctx, userID)
		if err != nil {
			return err
		}

		for _, w := range wallets {
			expected := w.OpeningBalance.Add(sums[w.ID])
			if expected.Equal(w.Balance) {
				continue
			}
			d := models.WalletDrift{
				WalletID: w.ID,
				Name:     w.Name,
				Stored:   w.Balance,
				Expected: expected,
				Drift:    w.Balance.Sub(expected),
			}
			if fix {
				if err := q.SetWalletBalance(ctx, userID, w.ID, expected); err != nil {
					return err
				}
				d.Fixed = true
			}
			drifts = append(drifts, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Name < drifts[j].Name })
	return drifts, nil
}

// IsNotFound reports whether err means a row or wallet does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrWalletNotFound)
}
