// Package bot runs the chat conversation: account linking commands, balance
// questions and free-text transactions posted to the ledger.
package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/intent"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
	"github.com/fanzirfan/MyFinance/internal/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Messenger delivers a reply to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Message is an inbound chat message.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// FromUpdate extracts the text message of a Telegram update. Updates
// without a message, text or sender are reported as not ok.
func FromUpdate(u tgbotapi.Update) (Message, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return Message{}, false
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return Message{}, false
	}
	return Message{
		ChatID:   m.Chat.ID,
		UserID:   m.From.ID,
		Username: m.From.UserName,
		Text:     text,
	}, true
}

// Bot handles chat messages for linked accounts.
type Bot struct {
	db         ledger.Backend
	ledger     *ledger.Service
	classifier intent.Classifier
	messenger  Messenger
}

// New creates a Bot. classifier may be nil, in which case only commands
// and keyword balance questions are understood.
func New(db ledger.Backend, l *ledger.Service, classifier intent.Classifier, messenger Messenger) *Bot {
	return &Bot{db: db, ledger: l, classifier: classifier, messenger: messenger}
}

// Handle processes one message and sends exactly one reply. The returned
// error is non-nil only for internal failures (storage), after the user
// has been sent a generic reply; delivery failures are logged.
func (b *Bot) Handle(ctx context.Context, msg Message) error {
	text := stripMentions(strings.TrimSpace(msg.Text))
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "/") {
		cmd, arg := splitCommand(text)
		switch cmd {
		case "/start":
			return b.start(ctx, msg, arg)
		case "/help":
			b.reply(ctx, msg.ChatID, ReplyHelp)
			return nil
		case "/disconnect":
			return b.disconnect(ctx, msg)
		case "/saldo", "/ceksaldo":
			// handled below once the account is known
		default:
			b.reply(ctx, msg.ChatID, ReplyHelp)
			return nil
		}
	}

	link, err := b.db.GetLinkByTelegramUser(ctx, msg.UserID)
	if errors.Is(err, store.ErrNotFound) {
		b.reply(ctx, msg.ChatID, ReplyNotConnected)
		return nil
	}
	if err != nil {
		return b.fail(ctx, msg.ChatID, ReplyInternalError, err)
	}

	return b.handleText(ctx, msg.ChatID, link.UserID, text)
}

func (b *Bot) handleText(ctx context.Context, chatID int64, userID uuid.UUID, text string) error {
	wallets, err := b.ledger.ListWallets(ctx, userID)
	if err != nil {
		return b.fail(ctx, chatID, ReplyInternalError, err)
	}
	walletNames := models.WalletNames(wallets)

	if q, ok := intent.DetectBalanceQuery(text, walletNames); ok {
		return b.balance(ctx, chatID, userID, q.Wallet)
	}

	if b.classifier == nil {
		b.reply(ctx, chatID, ReplyNotUnderstood)
		return nil
	}

	categories, err := b.ledger.ListCategories(ctx, userID, "")
	if err != nil {
		return b.fail(ctx, chatID, ReplyInternalError, err)
	}

	in, err := b.classifier.Classify(ctx, intent.Request{
		Text:       text,
		Wallets:    walletNames,
		Categories: models.CategoryNames(categories),
	})
	switch {
	case errors.Is(err, intent.ErrMissingTarget):
		b.reply(ctx, chatID, ReplyMissingTarget)
		return nil
	case err != nil:
		log.Printf("bot: classify %q: %v", text, err)
		b.reply(ctx, chatID, ReplyNotUnderstood)
		return nil
	}

	switch in.Type {
	case intent.CheckBalance:
		return b.balance(ctx, chatID, userID, in.Wallet)
	case intent.Transfer:
		return b.transfer(ctx, chatID, userID, in)
	default:
		return b.record(ctx, chatID, userID, in)
	}
}

func (b *Bot) start(ctx context.Context, msg Message, token string) error {
	if token == "" {
		b.reply(ctx, msg.ChatID, ReplyWelcome)
		return nil
	}

	link, err := b.db.GetLinkByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		b.reply(ctx, msg.ChatID, ReplyInvalidToken)
		return nil
	}
	if err != nil {
		return b.fail(ctx, msg.ChatID, ReplyConnectFail, err)
	}

	err = b.db.WithTx(ctx, func(q store.Querier) error {
		return q.ConnectLink(ctx, link.ID, msg.UserID, msg.Username)
	})
	if err != nil {
		return b.fail(ctx, msg.ChatID, ReplyConnectFail, err)
	}

	log.Printf("bot: telegram user %d connected to account %s", msg.UserID, link.UserID)
	b.reply(ctx, msg.ChatID, ReplyConnected)
	return nil
}

func (b *Bot) disconnect(ctx context.Context, msg Message) error {
	err := b.db.DisconnectTelegramUser(ctx, msg.UserID)
	if errors.Is(err, store.ErrNotFound) {
		b.reply(ctx, msg.ChatID, ReplyNotConnected)
		return nil
	}
	if err != nil {
		return b.fail(ctx, msg.ChatID, ReplyDisconnectFail, err)
	}
	log.Printf("bot: telegram user %d disconnected", msg.UserID)
	b.reply(ctx, msg.ChatID, ReplyDisconnected)
	return nil
}

func (b *Bot) balance(ctx context.Context, chatID int64, userID uuid.UUID, wallet string) error {
	report, err := b.ledger.CheckBalance(ctx, userID, wallet)
	var notFound *ledger.WalletNotFoundError
	switch {
	case errors.As(err, &notFound):
		b.reply(ctx, chatID, FormatWalletNotFound(notFound))
		return nil
	case err != nil:
		return b.fail(ctx, chatID, ReplyInternalError, err)
	}
	b.reply(ctx, chatID, FormatBalances(report))
	return nil
}

func (b *Bot) record(ctx context.Context, chatID int64, userID uuid.UUID, in *intent.Intent) error {
	typ := models.Expense
	if in.Type == intent.Income {
		typ = models.Income
	}

	res, err := b.ledger.Record(ctx, ledger.RecordInput{
		UserID:   userID,
		Type:     typ,
		Amount:   in.Amount,
		Wallet:   ledger.WalletRef{Name: in.Wallet},
		Category: ledger.CategoryRef{Name: in.Category},
		Note:     in.Note,
		Source:   models.SourceTelegram,
	})
	if err != nil {
		return b.writeFailed(ctx, chatID, err)
	}
	b.reply(ctx, chatID, FormatRecorded(res))
	return nil
}

func (b *Bot) transfer(ctx context.Context, chatID int64, userID uuid.UUID, in *intent.Intent) error {
	res, err := b.ledger.Transfer(ctx, ledger.TransferInput{
		UserID: userID,
		Amount: in.Amount,
		From:   ledger.WalletRef{Name: in.Wallet},
		To:     ledger.WalletRef{Name: in.ToWallet},
		Note:   in.Note,
		Source: models.SourceTelegram,
	})
	if err != nil {
		return b.writeFailed(ctx, chatID, err)
	}
	b.reply(ctx, chatID, FormatTransfer(res, in.Note))
	return nil
}

// writeFailed maps ledger validation errors to replies. Anything else is
// an internal failure.
func (b *Bot) writeFailed(ctx context.Context, chatID int64, err error) error {
	var notFound *ledger.WalletNotFoundError
	switch {
	case errors.As(err, &notFound):
		b.reply(ctx, chatID, FormatWalletNotFound(notFound))
		return nil
	case errors.Is(err, ledger.ErrSameWallet):
		b.reply(ctx, chatID, ReplySameWallet)
		return nil
	case errors.Is(err, ledger.ErrInvalidAmount):
		b.reply(ctx, chatID, ReplyInvalidAmount)
		return nil
	}
	return b.fail(ctx, chatID, ReplySaveFailed, err)
}

func (b *Bot) fail(ctx context.Context, chatID int64, reply string, err error) error {
	log.Printf("bot: chat %d: %v", chatID, err)
	b.reply(ctx, chatID, reply)
	return err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.messenger.Send(ctx, chatID, text); err != nil {
		log.Printf("bot: send to chat %d failed: %v", chatID, err)
	}
}

// splitCommand splits "/cmd@botname arg" into "/cmd" and "arg".
func splitCommand(text string) (string, string) {
	cmd, arg, _ := strings.Cut(text, " ")
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// stripMentions drops leading "@botname" mentions used in group chats.
func stripMentions(text string) string {
	for strings.HasPrefix(text, "@") {
		_, rest, _ := strings.Cut(text, " ")
		text = strings.TrimSpace(rest)
	}
	return text
}
