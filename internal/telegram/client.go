// Package telegram wraps the Telegram Bot API calls the service makes:
// sending replies and managing the webhook registration.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fanzirfan/MyFinance/internal/version"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AllowedUpdates is the update filter registered with the webhook.
var AllowedUpdates = []string{"message"}

// Client sends messages through the Bot API.
type Client struct {
	api *tgbotapi.BotAPI
}

// New creates a client for token. Unlike tgbotapi.NewBotAPI it does not
// call getMe, so constructing it never touches the network. An empty
// endpoint means the public Bot API.
func New(token, endpoint string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is not configured")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api := &tgbotapi.BotAPI{
		Token:  token,
		Buffer: 100,
		Client: &http.Client{Timeout: timeout},
	}
	api.SetAPIEndpoint(endpoint)
	return &Client{api: api}, nil
}

// withContext returns a copy of the API whose requests carry ctx.
func (c *Client) withContext(ctx context.Context) *tgbotapi.BotAPI {
	api := *c.api
	api.Client = ctxClient{ctx: ctx, next: c.api.Client}
	return &api
}

type ctxClient struct {
	ctx  context.Context
	next tgbotapi.HTTPClient
}

func (c ctxClient) Do(req *http.Request) (*http.Response, error) {
	req = req.WithContext(c.ctx)
	req.Header.Set("User-Agent", version.Get().UserAgent())
	return c.next.Do(req)
}

// Send delivers an HTML-formatted message to a chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := c.withContext(ctx).Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}

// SetWebhook registers url as the webhook. Telegram echoes secret in the
// X-Telegram-Bot-Api-Secret-Token header of every update.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	params := make(tgbotapi.Params)
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", AllowedUpdates); err != nil {
		return err
	}

	if _, err := c.withContext(ctx).MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	if _, err := c.withContext(ctx).Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("telegram deleteWebhook: %w", err)
	}
	return nil
}

// WebhookInfo reports the current webhook registration.
func (c *Client) WebhookInfo(ctx context.Context) (tgbotapi.WebhookInfo, error) {
	info, err := c.withContext(ctx).GetWebhookInfo()
	if err != nil {
		return info, fmt.Errorf("telegram getWebhookInfo: %w", err)
	}
	return info, nil
}
