// Package exports serves CSV and PDF downloads of a user's ledger.
package exports

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/fanzirfan/MyFinance/internal/http"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/export"
)

var (
	source export.Source
	loc    *time.Location
)

// Initialize sets up the exports package. The export date in file names
// and statement headers is taken in l.
func Initialize(s export.Source, l *time.Location) {
	source = s
	loc = l
}

// RegisterRoutes registers the export routes
func RegisterRoutes(r chi.Router) {
	r.Get("/export/csv", handleCSV)
	r.Get("/export/pdf", handlePDF)
}

func handleCSV(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func handlePDF(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "pdf", "application/pdf", export.WritePDF)
}

// serve renders into a buffer first so a rendering failure can still be
// reported as JSON.
func serve(w http.ResponseWriter, r *http.Request, format, contentType string, render func(io.Writer, *export.Statement) error) {
	uid, ok := api.UserID(w, r)
	if !ok {
		return
	}
	from, to, err := api.ParseDateRange(r)
	if err != nil {
		api.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().In(loc)
	st, err := export.Load(r.Context(), source, uid, from, to, now)
	if errors.Is(err, export.ErrNoTransactions) {
		api.ErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		api.InternalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, st); err != nil {
		api.InternalError(w, fmt.Errorf("render %s export: %w", format, err))
		return
	}

	filename := export.FileName(models.DateOf(now), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing %s export: %v", format, err)
	}
}
