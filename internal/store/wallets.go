package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, name, acronym, color, balance, opening_balance, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Acronym, &w.Color,
		&w.Balance, &w.OpeningBalance, timeValue{&w.CreatedAt})
	return w, err
}

// ListWallets returns the user's wallets in creation order.
func (q *Queries) ListWallets(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error) {
	rows, err := q.query(ctx, `SELECT `+walletColumns+` FROM wallets
		WHERE user_id = ? ORDER BY created_at, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []models.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (q *Queries) GetWallet(ctx context.Context, userID, id uuid.UUID) (models.Wallet, error) {
	w, err := scanWallet(q.queryRow(ctx, `SELECT `+walletColumns+` FROM wallets
		WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, ErrNotFound
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// CreateWallet inserts w, assigning an ID and creation time when unset.
func (q *Queries) CreateWallet(ctx context.Context, w *models.Wallet) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := q.exec(ctx, `INSERT INTO wallets (`+walletColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Name, w.Acronym, w.Color, w.Balance, w.OpeningBalance, stamp(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// UpdateWallet overwrites the editable fields of a wallet.
func (q *Queries) UpdateWallet(ctx context.Context, w models.Wallet) error {
	res, err := q.exec(ctx, `UPDATE wallets
		SET name = ?, acronym = ?, color = ?, balance = ?, opening_balance = ?
		WHERE id = ? AND user_id = ?`,
		w.Name, w.Acronym, w.Color, w.Balance, w.OpeningBalance, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	return checkAffected(res)
}

func (q *Queries) DeleteWallet(ctx context.Context, userID, id uuid.UUID) error {
	res, err := q.exec(ctx, `DELETE FROM wallets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return checkAffected(res)
}

// AdjustWalletBalance adds delta to the stored balance in a single
// statement and returns the new balance.
func (q *Queries) AdjustWalletBalance(ctx context.Context, userID, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.queryRow(ctx, `UPDATE wallets SET balance = ROUND(balance + ?, 2)
		WHERE id = ? AND user_id = ? RETURNING balance`, delta, id, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjust wallet balance: %w", err)
	}
	return balance, nil
}

// WithdrawWalletBalance subtracts amount only while the balance covers it.
// The check and the write are one statement, so concurrent withdrawals
// cannot overdraw the wallet.
func (q *Queries) WithdrawWalletBalance(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.queryRow(ctx, `UPDATE wallets SET balance = ROUND(balance - ?, 2)
		WHERE id = ? AND user_id = ? AND balance >= ? RETURNING balance`, amount, id, userID, amount).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := q.GetWallet(ctx, userID, id); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("withdraw wallet balance: %w", err)
	}
	return balance, nil
}

// SetWalletBalance overwrites the stored balance.
func (q *Queries) SetWalletBalance(ctx context.Context, userID, id uuid.UUID, balance decimal.Decimal) error {
	res, err := q.exec(ctx, `UPDATE wallets SET balance = ? WHERE id = ? AND user_id = ?`, balance, id, userID)
	if err != nil {
		return fmt.Errorf("set wallet balance: %w", err)
	}
	return checkAffected(res)
}

func (q *Queries) CountWalletTransactions(ctx context.Context, walletID uuid.UUID) (int, error) {
	var n int
	if err := q.queryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE wallet_id = ?`, walletID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count wallet transactions: %w", err)
	}
	return n, nil
}
