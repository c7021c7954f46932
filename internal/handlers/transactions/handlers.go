// Package transactions serves the transaction explorer and transfers.
package transactions

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	api "github.com/fanzirfan/MyFinance/internal/http"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/money"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
)

// DefaultLimit caps a listing when no limit is given.
const DefaultLimit = 100

var svc *ledger.Service

// Initialize sets up the transactions package with required dependencies
func Initialize(l *ledger.Service) {
	svc = l
}

// RegisterRoutes registers transaction and transfer routes
func RegisterRoutes(r chi.Router) {
	r.Get("/transactions", handleList)
	r.Post("/transactions", handleCreate)
	r.Get("/transactions/{id}", handleGet)
	r.Delete("/transactions/{id}", handleDelete)
	r.Post("/transfers", handleTransfer)
}

// transactionRequest names the wallet and category by ID or by name.
type transactionRequest struct {
	Type       models.TransactionType `json:"type"`
	Amount     money.Amount           `json:"amount"`
	WalletID   uuid.UUID              `json:"wallet_id"`
	Wallet     string                 `json:"wallet"`
	CategoryID uuid.UUID              `json:"category_id"`
	Category   string                 `json:"category"`
	Date       models.Date            `json:"date"`
	Note       string                 `json:"note"`
}

type transferRequest struct {
	Amount       money.Amount `json:"amount"`
	FromWalletID uuid.UUID    `json:"from_wallet_id"`
	FromWallet   string       `json:"from_wallet"`
	ToWalletID   uuid.UUID    `json:"to_wallet_id"`
	ToWallet     string       `json:"to_wallet"`
	Date         models.Date  `json:"date"`
	Note         string       `json:"note"`
}

func handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := svc.ListTransactions(r.Context(), uid, filter)
	if err != nil {
		api.InternalError(w, err)
		return
	}
	if list == nil {
		list = []models.Transaction{}
	}
	api.WriteJSON(w, http.StatusOK, list)
}

func parseFilter(r *http.Request) (models.TransactionFilter, error) {
	var f models.TransactionFilter
	q := r.URL.Query()

	if t := models.TransactionType(q.Get("type")); t != "" {
		if !t.Valid() {
			return f, ledger.ErrInvalidType
		}
		f.Type = t
	}
	if s := q.Get("wallet"); s != "" && s != "all" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, errors.New("invalid wallet")
		}
		f.WalletID = uuid.NullUUID{UUID: id, Valid: true}
	}

	from, to, err := api.ParseDateRange(r)
	if err != nil {
		return f, err
	}
	f.From, f.To = from, to

	if f.Limit, err = api.QueryInt(r, "limit", DefaultLimit); err != nil {
		return f, err
	}
	return f, nil
}

func handleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	id, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx, err := svc.GetTransaction(r.Context(), uid, id)
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, tx)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := svc.Record(r.Context(), ledger.RecordInput{
		UserID:   uid,
		Type:     req.Type,
		Amount:   req.Amount.Decimal,
		Wallet:   ledger.WalletRef{ID: req.WalletID, Name: req.Wallet},
		Category: ledger.CategoryRef{ID: req.CategoryID, Name: req.Category},
		Date:     req.Date,
		Note:     req.Note,
		Source:   models.SourceWeb,
	})
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"transaction": result.Transaction,
		"wallet":      result.Wallet,
	})
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	id, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	removed, err := svc.DeleteTransaction(r.Context(), uid, id)
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(removed))
	for _, t := range removed {
		ids = append(ids, t.ID)
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"deleted": ids})
}

func handleTransfer(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := svc.Transfer(r.Context(), ledger.TransferInput{
		UserID:       uid,
		Amount:       req.Amount.Decimal,
		From:         ledger.WalletRef{ID: req.FromWalletID, Name: req.FromWallet},
		To:           ledger.WalletRef{ID: req.ToWalletID, Name: req.ToWallet},
		Date:         req.Date,
		Note:         req.Note,
		Source:       models.SourceWeb,
		RequireFunds: true,
	})
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"transfer_id": result.TransferID,
		"debit":       result.Debit,
		"credit":      result.Credit,
		"from":        result.From,
		"to":          result.To,
	})
}
