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

const linkColumns = `id, user_id, connection_token, telegram_user_id, telegram_username,
	is_connected, created_at, updated_at`

func scanLink(row rowScanner) (models.TelegramLink, error) {
	var l models.TelegramLink
	var token sql.NullString
	var tgID sql.NullInt64
	err := row.Scan(&l.ID, &l.UserID, &token, &tgID, &l.TelegramUsername,
		&l.IsConnected, timeValue{&l.CreatedAt}, timeValue{&l.UpdatedAt})
	if err != nil {
		return l, err
	}
	l.ConnectionToken = token.String
	l.TelegramUserID = tgID.Int64
	return l, nil
}

func (q *Queries) getLink(ctx context.Context, where string, arg any) (models.TelegramLink, error) {
	l, err := scanLink(q.queryRow(ctx, `SELECT `+linkColumns+` FROM telegram_links WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TelegramLink{}, ErrNotFound
	}
	if err != nil {
		return models.TelegramLink{}, fmt.Errorf("get telegram link: %w", err)
	}
	return l, nil
}

func (q *Queries) GetLinkByUser(ctx context.Context, userID uuid.UUID) (models.TelegramLink, error) {
	return q.getLink(ctx, `user_id = ?`, userID)
}

func (q *Queries) GetLinkByToken(ctx context.Context, token string) (models.TelegramLink, error) {
	if token == "" {
		return models.TelegramLink{}, ErrNotFound
	}
	return q.getLink(ctx, `connection_token = ?`, token)
}

// GetLinkByTelegramUser returns the connected link of a Telegram user.
func (q *Queries) GetLinkByTelegramUser(ctx context.Context, telegramUserID int64) (models.TelegramLink, error) {
	return q.getLink(ctx, `telegram_user_id = ? AND is_connected = TRUE`, telegramUserID)
}

// UpsertLinkToken creates the user's link row or replaces its token.
func (q *Queries) UpsertLinkToken(ctx context.Context, userID uuid.UUID, token string) (models.TelegramLink, error) {
	now := stamp(time.Now())
	_, err := q.exec(ctx, `INSERT INTO telegram_links (id, user_id, connection_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET connection_token = excluded.connection_token,
			updated_at = excluded.updated_at`,
		uuid.New(), userID, token, now, now)
	if err != nil {
		return models.TelegramLink{}, fmt.Errorf("upsert telegram link: %w", err)
	}
	return q.GetLinkByUser(ctx, userID)
}

// ConnectLink attaches a Telegram user to the link, consumes its token and
// detaches the same Telegram user from any other account.
func (q *Queries) ConnectLink(ctx context.Context, linkID uuid.UUID, telegramUserID int64, username string) error {
	now := stamp(time.Now())
	if _, err := q.exec(ctx, `UPDATE telegram_links
		SET is_connected = FALSE, telegram_user_id = NULL, updated_at = ?
		WHERE telegram_user_id = ? AND id <> ?`, now, telegramUserID, linkID); err != nil {
		return fmt.Errorf("detach telegram user: %w", err)
	}

	res, err := q.exec(ctx, `UPDATE telegram_links
		SET telegram_user_id = ?, telegram_username = ?, is_connected = TRUE,
			connection_token = NULL, updated_at = ?
		WHERE id = ?`, telegramUserID, username, now, linkID)
	if err != nil {
		return fmt.Errorf("connect telegram link: %w", err)
	}
	return checkAffected(res)
}

func (q *Queries) DisconnectUser(ctx context.Context, userID uuid.UUID) error {
	res, err := q.exec(ctx, `UPDATE telegram_links
		SET is_connected = FALSE, telegram_user_id = NULL, telegram_username = '', updated_at = ?
		WHERE user_id = ?`, stamp(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("disconnect user: %w", err)
	}
	return checkAffected(res)
}

func (q *Queries) DisconnectTelegramUser(ctx context.Context, telegramUserID int64) error {
	res, err := q.exec(ctx, `UPDATE telegram_links
		SET is_connected = FALSE, telegram_user_id = NULL, telegram_username = '', updated_at = ?
		WHERE telegram_user_id = ? AND is_connected = TRUE`, stamp(time.Now()), telegramUserID)
	if err != nil {
		return fmt.Errorf("disconnect telegram user: %w", err)
	}
	return checkAffected(res)
}
