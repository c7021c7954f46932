package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
)

const categoryColumns = `id, user_id, name, type, icon, created_at`

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, timeValue{&c.CreatedAt})
	return c, err
}

// ListCategories returns shared categories and the user's own, ordered by
// name. An empty typ returns both income and expense categories.
func (q *Queries) ListCategories(ctx context.Context, userID uuid.UUID, typ models.TransactionType) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE (user_id IS NULL OR user_id = ?)`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name, CASE WHEN user_id IS NULL THEN 0 ELSE 1 END`

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindCategory looks a category up by case-insensitive name and type,
// preferring a shared default over one of the user's own.
func (q *Queries) FindCategory(ctx context.Context, userID uuid.UUID, name string, typ models.TransactionType) (models.Category, error) {
	c, err := scanCategory(q.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE LOWER(name) = LOWER(?) AND type = ? AND (user_id IS NULL OR user_id = ?)
		ORDER BY CASE WHEN user_id IS NULL THEN 0 ELSE 1 END, created_at
		LIMIT 1`, name, string(typ), userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error) {
	c, err := scanCategory(q.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts c, assigning an ID and creation time when unset.
func (q *Queries) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := q.exec(ctx, `INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, string(c.Type), c.Icon, stamp(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// DeleteCategory removes one of the user's own categories. Shared
// categories cannot be deleted this way.
func (q *Queries) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	res, err := q.exec(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return checkAffected(res)
}

func (q *Queries) CountCategoryTransactions(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	if err := q.queryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count category transactions: %w", err)
	}
	return n, nil
}
