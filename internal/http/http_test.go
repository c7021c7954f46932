package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
)

func TestLedgerError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"wallet not found", &ledger.WalletNotFoundError{Name: "Jago", Available: []string{"BCA"}}, http.StatusNotFound, "Jago"},
		{"row not found", fmt.Errorf("get: %w", ledger.ErrNotFound), http.StatusNotFound, "Not found"},
		{"in use", ledger.ErrInUse, http.StatusConflict, "still referenced"},
		{"category exists", ledger.ErrCategoryExists, http.StatusConflict, "already exists"},
		{"insufficient funds", ledger.ErrInsufficientFunds, http.StatusBadRequest, "Saldo wallet asal tidak mencukupi"},
		{"same wallet", ledger.ErrSameWallet, http.StatusBadRequest, "must differ"},
		{"wrapped insufficient funds", fmt.Errorf("debit BCA: %w", ledger.ErrInsufficientFunds), http.StatusBadRequest, "Saldo wallet asal tidak mencukupi"},
		{"sub-cent balance", ledger.ErrInvalidBalance, http.StatusBadRequest, "two decimals"},
		{"database", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			LedgerError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body %q missing %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, errors.New("pq: password authentication failed"))
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("error details leaked: %s", rec.Body.String())
	}
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		query   string
		wantErr bool
		from    string
		to      string
	}{
		{"", false, "", ""},
		{"from=2025-01-01", false, "2025-01-01", ""},
		{"from=2025-01-01&to=2025-01-31", false, "2025-01-01", "2025-01-31"},
		{"from=01/01/2025", true, "", ""},
		{"from=2025-02-01&to=2025-01-01", true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			from, to, err := ParseDateRange(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := dateString(from); got != tt.from {
				t.Errorf("from = %q, want %q", got, tt.from)
			}
			if got := dateString(to); got != tt.to {
				t.Errorf("to = %q, want %q", got, tt.to)
			}
		})
	}
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"BCA","color":"red"}`))
	if err := DecodeJSON(r, &v); err == nil {
		t.Error("Expected unknown field to be rejected")
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := DecodeJSON(r, &v); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("Expected empty body error, got %v", err)
	}
}
