package http

import (
	"errors"
	"net/http"

	"github.com/fanzirfan/MyFinance/internal/auth"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
	"github.com/google/uuid"
)

// LedgerError maps a ledger error to a JSON error response. Errors the
// ledger does not know are logged and reported as a generic 500.
func LedgerError(w http.ResponseWriter, err error) {
	var notFound *ledger.WalletNotFoundError
	switch {
	case errors.As(err, &notFound):
		ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrNotFound):
		ErrorResponse(w, "Not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrInUse), errors.Is(err, ledger.ErrCategoryExists):
		ErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		ErrorResponse(w, "Saldo wallet asal tidak mencukupi", http.StatusBadRequest)
	case errors.Is(err, ledger.ErrSameWallet),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidBalance),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrCategoryTypeMismatch),
		errors.Is(err, ledger.ErrNameRequired):
		ErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		InternalError(w, err)
	}
}

// UserID returns the authenticated user of r. When there is none it
// writes a 401 and reports false.
func UserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	uid, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return uid, true
}
