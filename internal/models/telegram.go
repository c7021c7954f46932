package models

import (
	"time"

	"github.com/google/uuid"
)

// TelegramLink pairs a web account with a Telegram identity.
type TelegramLink struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	ConnectionToken  string    `json:"connection_token,omitempty"`
	TelegramUserID   int64     `json:"telegram_user_id,omitempty"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	IsConnected      bool      `json:"is_connected"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
