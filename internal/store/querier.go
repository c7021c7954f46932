package store

import (
	"context"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Querier is the set of operations available on a Store and inside WithTx.
type Querier interface {
	ListWallets(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error)
	GetWallet(ctx context.Context, userID, id uuid.UUID) (models.Wallet, error)
	CreateWallet(ctx context.Context, w *models.Wallet) error
	UpdateWallet(ctx context.Context, w models.Wallet) error
	DeleteWallet(ctx context.Context, userID, id uuid.UUID) error
	AdjustWalletBalance(ctx context.Context, userID, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	WithdrawWalletBalance(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	SetWalletBalance(ctx context.Context, userID, id uuid.UUID, balance decimal.Decimal) error
	CountWalletTransactions(ctx context.Context, walletID uuid.UUID) (int, error)

	ListCategories(ctx context.Context, userID uuid.UUID, typ models.TransactionType) ([]models.Category, error)
	FindCategory(ctx context.Context, userID uuid.UUID, name string, typ models.TransactionType) (models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
	CountCategoryTransactions(ctx context.Context, categoryID uuid.UUID) (int, error)

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
	ListTransferLegs(ctx context.Context, userID, transferID uuid.UUID) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	SumTransactionsByWallet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	GetLinkByUser(ctx context.Context, userID uuid.UUID) (models.TelegramLink, error)
	GetLinkByToken(ctx context.Context, token string) (models.TelegramLink, error)
	GetLinkByTelegramUser(ctx context.Context, telegramUserID int64) (models.TelegramLink, error)
	UpsertLinkToken(ctx context.Context, userID uuid.UUID, token string) (models.TelegramLink, error)
	ConnectLink(ctx context.Context, linkID uuid.UUID, telegramUserID int64, username string) error
	DisconnectUser(ctx context.Context, userID uuid.UUID) error
	DisconnectTelegramUser(ctx context.Context, telegramUserID int64) error
}

var _ Querier = (*Queries)(nil)
