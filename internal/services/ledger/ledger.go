// Package ledger owns every write that touches a wallet balance. Each
// operation runs in one database transaction and moves balances with an
// atomic increment, so a stored balance always equals its opening balance
// plus the sum of its transactions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Backend is the persistence the ledger needs. *store.Store satisfies it.
type Backend interface {
	store.Querier
	WithTx(ctx context.Context, fn func(store.Querier) error) error
}

// Service provides ledger operations
type Service struct {
	db  Backend
	loc *time.Location
	now func() time.Time
}

// New creates a ledger service. Dates default to "today" in loc.
func New(db Backend, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, now: time.Now}
}

// Location returns the time zone used for default dates.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

// WalletRef names a wallet by ID or, when the ID is nil, by name.
type WalletRef struct {
	ID   uuid.UUID
	Name string
}

func (r WalletRef) label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID.String()
}

// CategoryRef names a category by ID or, when the ID is nil, by name.
type CategoryRef struct {
	ID   uuid.UUID
	Name string
}

// RecordInput describes a single income or expense.
type RecordInput struct {
	UserID   uuid.UUID
	Type     models.TransactionType
	Amount   decimal.Decimal
	Wallet   WalletRef
	Category CategoryRef
	Date     models.Date
	Note     string
	Source   models.Source
}

// RecordResult is what Record wrote.
type RecordResult struct {
	Transaction models.Transaction
	Wallet      models.Wallet
	Category    models.Category
}

// Record stores an income or expense and applies it to the wallet balance.
// Unknown wallets are rejected; unknown category names become new
// personal categories.
func (s *Service) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	if !validAmount(in.Amount) {
		return nil, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = s.today()
	}

	var result RecordResult
	err := s.db.WithTx(ctx, func(q store.Querier) error {
		wallets, err := q.ListWallets(ctx, in.UserID)
		if err != nil {
			return err
		}
		wallet, err := resolveWallet(wallets, in.Wallet, RoleWallet)
		if err != nil {
			return err
		}

		category, err := s.resolveCategory(ctx, q, in.UserID, in.Category, in.Type)
		if err != nil {
			return err
		}

		tx := models.Transaction{
			UserID:     in.UserID,
			WalletID:   wallet.ID,
			CategoryID: category.ID,
			Amount:     in.Type.Sign(in.Amount),
			Date:       in.Date,
			Note:       strings.TrimSpace(in.Note),
			Source:     in.Source,
		}
		if err := q.CreateTransaction(ctx, &tx); err != nil {
			return err
		}

		balance, err := q.AdjustWalletBalance(ctx, in.UserID, wallet.ID, tx.Amount)
		if err != nil {
			return fmt.Errorf("apply %s to %s: %w", tx.Amount, wallet.Name, err)
		}
		wallet.Balance = balance

		tx.WalletName, tx.WalletAcronym, tx.WalletColor = wallet.Name, wallet.Acronym, wallet.Color
		tx.CategoryName, tx.CategoryType = category.Name, category.Type
		result = RecordResult{Transaction: tx, Wallet: wallet, Category: category}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ledger: recorded %s for user %s", result.Transaction.Describe(), in.UserID)
	return &result, nil
}

// TransferInput describes a move of funds between two of a user's wallets.
type TransferInput struct {
	UserID uuid.UUID
	Amount decimal.Decimal
	From   WalletRef
	To     WalletRef
	Date   models.Date
	Note   string
	Source models.Source
	// RequireFunds rejects transfers larger than the source balance.
	RequireFunds bool
}

// TransferResult holds both legs and both wallets after the transfer.
type TransferResult struct {
	TransferID uuid.UUID
	Debit      models.Transaction
	Credit     models.Transaction
	From       models.Wallet
	To         models.Wallet
}

// Transfer writes a debit on the source wallet and a credit on the target
// wallet, linked by a shared transfer ID, and moves both balances.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !validAmount(in.Amount) {
		return nil, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = s.today()
	}
	note := strings.TrimSpace(in.Note)

	var result TransferResult
	err := s.db.WithTx(ctx, func(q store.Querier) error {
		wallets, err := q.ListWallets(ctx, in.UserID)
		if err != nil {
			return err
		}
		from, err := resolveWallet(wallets, in.From, RoleSource)
		if err != nil {
			return err
		}
		to, err := resolveWallet(wallets, in.To, RoleTarget)
		if err != nil {
			return err
		}
		if from.ID == to.ID {
			return ErrSameWallet
		}

		outCat, err := s.resolveCategory(ctx, q, in.UserID, CategoryRef{Name: models.TransferOutCategory}, models.Expense)
		if err != nil {
			return err
		}
		inCat, err := s.resolveCategory(ctx, q, in.UserID, CategoryRef{Name: models.TransferInCategory}, models.Income)
		if err != nil {
			return err
		}

		transferID := uuid.NullUUID{UUID: uuid.New(), Valid: true}

		debit := models.Transaction{
			UserID:     in.UserID,
			WalletID:   from.ID,
			CategoryID: outCat.ID,
			Amount:     in.Amount.Neg(),
			Date:       in.Date,
			Note:       transferNote("Transfer ke", to.Name, note),
			Source:     in.Source,
			TransferID: transferID,
		}
		if err := q.CreateTransaction(ctx, &debit); err != nil {
			return err
		}
		if in.RequireFunds {
			from.Balance, err = q.WithdrawWalletBalance(ctx, in.UserID, from.ID, in.Amount)
		} else {
			from.Balance, err = q.AdjustWalletBalance(ctx, in.UserID, from.ID, debit.Amount)
		}
		if err != nil {
			return fmt.Errorf("debit %s: %w", from.Name, err)
		}

		credit := models.Transaction{
			UserID:     in.UserID,
			WalletID:   to.ID,
			CategoryID: inCat.ID,
			Amount:     in.Amount,
			Date:       in.Date,
			Note:       transferNote("Transfer dari", from.Name, note),
			Source:     in.Source,
			TransferID: transferID,
		}
		if err := q.CreateTransaction(ctx, &credit); err != nil {
			return err
		}
		if to.Balance, err = q.AdjustWalletBalance(ctx, in.UserID, to.ID, credit.Amount); err != nil {
			return fmt.Errorf("credit %s: %w", to.Name, err)
		}

		debit.WalletName, debit.WalletAcronym, debit.WalletColor = from.Name, from.Acronym, from.Color
		debit.CategoryName, debit.CategoryType = outCat.Name, outCat.Type
		credit.WalletName, credit.WalletAcronym, credit.WalletColor = to.Name, to.Acronym, to.Color
		credit.CategoryName, credit.CategoryType = inCat.Name, inCat.Type
		result = TransferResult{TransferID: transferID.UUID, Debit: debit, Credit: credit, From: from, To: to}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ledger: transfer %s %s -> %s for user %s", in.Amount, result.From.Name, result.To.Name, in.UserID)
	return &result, nil
}

func transferNote(prefix, wallet, note string) string {
	if note == "" {
		return prefix + " " + wallet
	}
	return prefix + " " + wallet + ": " + note
}

// DeleteTransaction removes a transaction and reverses its effect on the
// wallet balance. Deleting either leg of a transfer removes both legs.
// It returns the removed rows.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) ([]models.Transaction, error) {
	var removed []models.Transaction
	err := s.db.WithTx(ctx, func(q store.Querier) error {
		tx, err := q.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}

		legs := []models.Transaction{tx}
		if tx.IsTransfer() {
			if legs, err = q.ListTransferLegs(ctx, userID, tx.TransferID.UUID); err != nil {
				return err
			}
		}

		for _, leg := range legs {
			if err := q.DeleteTransaction(ctx, userID, leg.ID); err != nil {
				return err
			}
			if _, err := q.AdjustWalletBalance(ctx, userID, leg.WalletID, leg.Amount.Neg()); err != nil {
				return fmt.Errorf("reverse %s on %s: %w", leg.Amount, leg.WalletName, err)
			}
		}
		removed = legs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// resolveWallet finds a wallet by ID, or by case-insensitive exact name.
func resolveWallet(wallets []models.Wallet, ref WalletRef, role WalletRole) (models.Wallet, error) {
	if ref.ID != uuid.Nil {
		for _, w := range wallets {
			if w.ID == ref.ID {
				return w, nil
			}
		}
	} else if name := strings.TrimSpace(ref.Name); name != "" {
		for _, w := range wallets {
			if strings.EqualFold(w.Name, name) {
				return w, nil
			}
		}
	}
	return models.Wallet{}, &WalletNotFoundError{
		Name:      ref.label(),
		Role:      role,
		Available: models.WalletNames(wallets),
	}
}

// resolveCategory finds a category by ID, or by name and type preferring a
// shared default, creating a personal category when the name is new.
func (s *Service) resolveCategory(ctx context.Context, q store.Querier, userID uuid.UUID, ref CategoryRef, typ models.TransactionType) (models.Category, error) {
	if ref.ID != uuid.Nil {
		c, err := q.GetCategory(ctx, ref.ID)
		if err != nil {
			return models.Category{}, err
		}
		if !c.VisibleTo(userID) {
			return models.Category{}, ErrNotFound
		}
		if c.Type != typ {
			return models.Category{}, ErrCategoryTypeMismatch
		}
		return c, nil
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		name = "Lainnya"
	}

	c, err := q.FindCategory(ctx, userID, name, typ)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Category{}, err
	}

	c = models.Category{
		UserID: uuid.NullUUID{UUID: userID, Valid: true},
		Name:   name,
		Type:   typ,
	}
	if err := q.CreateCategory(ctx, &c); err != nil {
		return models.Category{}, err
	}
	log.Printf("ledger: created category %q (%s) for user %s", c.Name, c.Type, userID)
	return c, nil
}
