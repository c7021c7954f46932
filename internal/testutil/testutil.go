// Package testutil provides testing utilities for the MyFinance service.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fanzirfan/MyFinance/internal/auth"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JWTSecret signs the tokens minted by Token.
const JWTSecret = "test-secret-do-not-use"

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	Token   string
	t       *testing.T
}

// ProjectRoot returns the root directory of the project.
// It works by finding the go.mod file.
func ProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not get caller info")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// NewTestStore opens a migrated, seeded in-memory SQLite store.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, "sqlite::memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate store: %v", err)
	}
	if _, err := s.SeedCategories(ctx); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}
	return s
}

// MustWallet creates a wallet with the given opening balance.
func MustWallet(t *testing.T, s *store.Store, userID uuid.UUID, name string, balance int64) models.Wallet {
	t.Helper()
	w := models.Wallet{
		UserID:         userID,
		Name:           name,
		Acronym:        models.NormalizeAcronym(name),
		Color:          models.DefaultWalletColor,
		Balance:        decimal.NewFromInt(balance),
		OpeningBalance: decimal.NewFromInt(balance),
	}
	if err := s.CreateWallet(context.Background(), &w); err != nil {
		t.Fatalf("Failed to create wallet %s: %v", name, err)
	}
	return w
}

// Balance reads a wallet's stored balance.
func Balance(t *testing.T, s *store.Store, userID, walletID uuid.UUID) decimal.Decimal {
	t.Helper()
	w, err := s.GetWallet(context.Background(), userID, walletID)
	if err != nil {
		t.Fatalf("Failed to read wallet %s: %v", walletID, err)
	}
	return w.Balance
}

// Token mints a bearer token for userID signed with JWTSecret.
func Token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.Sign([]byte(JWTSecret), userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// NewTestServer creates a new test server around the application's router.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		t:       t,
	}
}

// As returns a copy of the server that authenticates as userID.
func (ts *TestServer) As(userID uuid.UUID) *TestServer {
	cp := *ts
	cp.Token = Token(ts.t, userID)
	return &cp
}

// Do performs a request, sending body as JSON when it is not nil.
func (ts *TestServer) Do(method, path string, body any, headers map[string]string) *http.Response {
	ts.t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		case []byte:
			r = bytes.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				ts.t.Fatalf("Failed to encode body: %v", err)
			}
			r = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, ts.BaseURL+path, r)
	if err != nil {
		ts.t.Fatalf("Failed to build %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodGet, path, nil, nil)
}

// POST performs a POST request with a JSON body
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPost, path, body, nil)
}

// PATCH performs a PATCH request with a JSON body
func (ts *TestServer) PATCH(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPatch, path, body, nil)
}

// DELETE performs a DELETE request to the given path
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodDelete, path, nil, nil)
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}

// DecodeJSON decodes the response body into v
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
