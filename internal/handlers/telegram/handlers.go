// Package telegram serves the bot webhook and the connection-token
// endpoints used to pair a web account with a Telegram user.
package telegram

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	api "github.com/fanzirfan/MyFinance/internal/http"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/bot"
	"github.com/fanzirfan/MyFinance/internal/store"
)

// SecretHeader carries the webhook secret set with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const (
	tokenLength   = 16
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxUpdateSize = 1 << 20
)

// MessageHandler processes one inbound chat message.
type MessageHandler interface {
	Handle(ctx context.Context, msg bot.Message) error
}

// Links stores connection tokens.
type Links interface {
	GetLinkByUser(ctx context.Context, userID uuid.UUID) (models.TelegramLink, error)
	UpsertLinkToken(ctx context.Context, userID uuid.UUID, token string) (models.TelegramLink, error)
	DisconnectUser(ctx context.Context, userID uuid.UUID) error
}

var (
	handler MessageHandler
	links   Links
	secret  string
)

// Initialize sets up the telegram package. An empty webhook secret
// rejects every webhook call.
func Initialize(h MessageHandler, l Links, webhookSecret string) {
	handler = h
	links = l
	secret = webhookSecret
}

// RegisterWebhook registers the public webhook routes.
func RegisterWebhook(r chi.Router) {
	r.Get("/telegram/webhook", handleWebhookStatus)
	r.Post("/telegram/webhook", handleWebhook)
}

// RegisterRoutes registers the authenticated token routes.
func RegisterRoutes(r chi.Router) {
	r.Get("/telegram/token", handleGetLink)
	r.Post("/telegram/token", handleCreateToken)
	r.Delete("/telegram/token", handleDisconnect)
}

func handleWebhookStatus(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "Webhook is active"})
}

func handleWebhook(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get(SecretHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
		api.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateSize)).Decode(&update); err != nil {
		api.ErrorResponse(w, "Invalid update", http.StatusBadRequest)
		return
	}

	msg, ok := bot.FromUpdate(update)
	if !ok {
		// Edits, joins, stickers and the like are acknowledged and ignored.
		api.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	if err := handler.Handle(r.Context(), msg); err != nil {
		log.Printf("telegram: update %d from user %d: %v", update.UpdateID, msg.UserID, err)
		api.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleGetLink(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	link, err := links.GetLinkByUser(r.Context(), uid)
	if errors.Is(err, store.ErrNotFound) {
		api.ErrorResponse(w, "No Telegram link", http.StatusNotFound)
		return
	}
	if err != nil {
		api.InternalError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, link)
}

// handleCreateToken creates or regenerates the caller's connection token.
func handleCreateToken(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	token, err := NewConnectionToken()
	if err != nil {
		api.InternalError(w, err)
		return
	}
	link, err := links.UpsertLinkToken(r.Context(), uid, token)
	if err != nil {
		api.InternalError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, link)
}

func handleDisconnect(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	err := links.DisconnectUser(r.Context(), uid)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		api.InternalError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// NewConnectionToken returns 16 random characters from [A-Za-z0-9].
func NewConnectionToken() (string, error) {
	b := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}
