package dashboard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	api "github.com/fanzirfan/MyFinance/internal/http"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/summary"
)

var svc *summary.Service

// Initialize sets up the dashboard package with required dependencies
func Initialize(s *summary.Service) {
	svc = s
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", handleDashboard)
}

// handleDashboard serves ?period=week|month|year&wallet=<id|all>.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	period := models.ParsePeriod(q.Get("period"))

	var walletID uuid.NullUUID
	if s := q.Get("wallet"); s != "" && s != "all" {
		id, err := uuid.Parse(s)
		if err != nil {
			api.ErrorResponse(w, "invalid wallet", http.StatusBadRequest)
			return
		}
		walletID = uuid.NullUUID{UUID: id, Valid: true}
	}

	d, err := svc.Dashboard(r.Context(), uid, period, walletID)
	if errors.Is(err, summary.ErrUnknownWallet) {
		api.ErrorResponse(w, "Wallet not found", http.StatusNotFound)
		return
	}
	if err != nil {
		api.InternalError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}
