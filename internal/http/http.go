package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// WriteJSON sends v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ErrorResponse sends {"error": message} with the given status.
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		log.Printf("Error: %s (status %d)", message, statusCode)
	}
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// InternalError logs err and sends a generic 500.
func InternalError(w http.ResponseWriter, err error) {
	log.Printf("Error: %v", err)
	WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// DecodeJSON reads a JSON request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// URLParamUUID parses a chi URL parameter as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// ParseDateRange parses the optional "from" and "to" query parameters
// (YYYY-MM-DD). A missing bound is returned as nil.
func ParseDateRange(r *http.Request) (from, to *models.Date, err error) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date %q", s)
		}
		from = &d
	}
	if s := q.Get("to"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date %q", s)
		}
		to = &d
	}
	if from != nil && to != nil && to.Before(from.Time) {
		return nil, nil, errors.New("to date is before from date")
	}
	return from, to, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}
