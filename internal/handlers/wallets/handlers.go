// Package wallets serves wallet and category management and balance
// reconciliation.
package wallets

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	api "github.com/fanzirfan/MyFinance/internal/http"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
)

var svc *ledger.Service

// Initialize sets up the wallets package with required dependencies
func Initialize(l *ledger.Service) {
	svc = l
}

// RegisterRoutes registers wallet and category routes
func RegisterRoutes(r chi.Router) {
	r.Get("/wallets", handleList)
	r.Post("/wallets", handleCreate)
	r.Get("/wallets/reconcile", handleReconcile)
	r.Post("/wallets/reconcile", handleReconcile)
	r.Get("/wallets/{id}", handleGet)
	r.Patch("/wallets/{id}", handleUpdate)
	r.Delete("/wallets/{id}", handleDelete)

	r.Get("/categories", handleListCategories)
	r.Post("/categories", handleCreateCategory)
	r.Delete("/categories/{id}", handleDeleteCategory)
}

type walletRequest struct {
	Name    string          `json:"name"`
	Acronym string          `json:"acronym"`
	Color   string          `json:"color"`
	Balance decimal.Decimal `json:"balance"`
}

type walletPatch struct {
	Name    *string          `json:"name"`
	Acronym *string          `json:"acronym"`
	Color   *string          `json:"color"`
	Balance *decimal.Decimal `json:"balance"`
}

type walletList struct {
	Wallets []models.Wallet `json:"wallets"`
	Total   decimal.Decimal `json:"total"`
}

func handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	list, err := svc.ListWallets(r.Context(), uid)
	if err != nil {
		api.InternalError(w, err)
		return
	}
	if list == nil {
		list = []models.Wallet{}
	}
	api.WriteJSON(w, http.StatusOK, walletList{Wallets: list, Total: models.TotalBalance(list)})
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
	wallet, err := svc.GetWallet(r.Context(), uid, id)
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, wallet)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	var req walletRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	wallet, err := svc.CreateWallet(r.Context(), uid, ledger.WalletInput{
		Name:    req.Name,
		Acronym: req.Acronym,
		Color:   req.Color,
		Balance: req.Balance,
	})
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, wallet)
}

func handleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	id, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req walletPatch
	if err := api.DecodeJSON(r, &req); err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	wallet, err := svc.UpdateWallet(r.Context(), uid, id, ledger.WalletUpdate(req))
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, wallet)
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
	if err := svc.DeleteWallet(r.Context(), uid, id); err != nil {
		api.LedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReconcile reports balance drift; POST also rewrites drifted balances.
func handleReconcile(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	drifts, err := svc.Reconcile(r.Context(), uid, r.Method == http.MethodPost)
	if err != nil {
		api.InternalError(w, err)
		return
	}
	if drifts == nil {
		drifts = []models.WalletDrift{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"consistent": len(drifts) == 0,
		"drifts":     drifts,
	})
}

type categoryRequest struct {
	Name string                 `json:"name"`
	Type models.TransactionType `json:"type"`
	Icon string                 `json:"icon"`
}

func handleListCategories(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	typ := models.TransactionType(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		api.ErrorResponse(w, ledger.ErrInvalidType.Error(), http.StatusBadRequest)
		return
	}
	list, err := svc.ListCategories(r.Context(), uid, typ)
	if err != nil {
		api.InternalError(w, err)
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	api.WriteJSON(w, http.StatusOK, list)
}

func handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := svc.CreateCategory(r.Context(), uid, req.Name, req.Type, req.Icon)
	if err != nil {
		api.LedgerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, c)
}

func handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	id, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := svc.DeleteCategory(r.Context(), uid, id); err != nil {
		api.LedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
