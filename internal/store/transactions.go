package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const transactionSelect = `SELECT t.id, t.user_id, t.wallet_id, t.category_id, t.amount, t.date,
		t.note, t.source, t.transfer_id, t.created_at,
		w.name, w.acronym, w.color, c.name, c.type
	FROM transactions t
	JOIN wallets w ON w.id = t.wallet_id
	JOIN categories c ON c.id = t.category_id`

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.WalletID, &t.CategoryID, &t.Amount, &t.Date,
		&t.Note, &t.Source, &t.TransferID, timeValue{&t.CreatedAt},
		&t.WalletName, &t.WalletAcronym, &t.WalletColor, &t.CategoryName, &t.CategoryType)
	return t, err
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTransaction inserts t, assigning an ID and creation time when unset.
// It does not touch the wallet balance.
func (q *Queries) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Source == "" {
		t.Source = models.SourceWeb
	}
	_, err := q.exec(ctx, `INSERT INTO transactions
		(id, user_id, wallet_id, category_id, amount, date, note, source, transfer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.WalletID, t.CategoryID, t.Amount, t.Date, t.Note,
		string(t.Source), t.TransferID, stamp(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetTransaction returns one transaction with its wallet and category joined.
func (q *Queries) GetTransaction(ctx context.Context, userID, id uuid.UUID) (models.Transaction, error) {
	t, err := scanTransaction(q.queryRow(ctx, transactionSelect+`
		WHERE t.id = ? AND t.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the user's transactions newest first.
func (q *Queries) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := transactionSelect + ` WHERE t.user_id = ?`
	args := []any{userID}

	switch filter.Type {
	case models.Expense:
		query += ` AND t.amount < 0`
	case models.Income:
		query += ` AND t.amount >= 0`
	}
	if filter.WalletID.Valid {
		query += ` AND t.wallet_id = ?`
		args = append(args, filter.WalletID.UUID)
	}
	if filter.From != nil {
		query += ` AND t.date >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND t.date <= ?`
		args = append(args, *filter.To)
	}
	query += ` ORDER BY t.date DESC, t.created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListTransferLegs returns both sides of a transfer.
func (q *Queries) ListTransferLegs(ctx context.Context, userID, transferID uuid.UUID) ([]models.Transaction, error) {
	rows, err := q.query(ctx, transactionSelect+`
		WHERE t.user_id = ? AND t.transfer_id = ?
		ORDER BY t.amount`, userID, transferID)
	if err != nil {
		return nil, fmt.Errorf("query transfer legs: %w", err)
	}
	return collectTransactions(rows)
}

// DeleteTransaction removes the row only. Callers reverse the balance.
func (q *Queries) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	res, err := q.exec(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkAffected(res)
}

// SumTransactionsByWallet totals the signed amounts per wallet.
func (q *Queries) SumTransactionsByWallet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	rows, err := q.query(ctx, `SELECT wallet_id, ROUND(COALESCE(SUM(amount), 0), 2)
		FROM transactions WHERE user_id = ? GROUP BY wallet_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	sums := make(map[uuid.UUID]decimal.Decimal)
	for rows.Next() {
		var id uuid.UUID
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		sums[id] = sum
	}
	return sums, rows.Err()
}
