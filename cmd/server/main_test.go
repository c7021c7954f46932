package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fanzirfan/MyFinance/internal/config"
	telegramhandlers "github.com/fanzirfan/MyFinance/internal/handlers/telegram"
	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/intent"
	"github.com/fanzirfan/MyFinance/internal/testutil"
)

const webhookSecret = "test-webhook-secret"

type sentMessage struct {
	chatID int64
	text   string
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (m *recordingMessenger) Send(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{chatID, text})
	return nil
}

func (m *recordingMessenger) last(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no message was sent")
	}
	return m.sent[len(m.sent)-1].text
}

// cannedClassifier returns fixed model output per message text.
type cannedClassifier map[string]string

func (c cannedClassifier) Classify(_ context.Context, req intent.Request) (*intent.Intent, error) {
	raw, ok := c[req.Text]
	if !ok {
		return nil, errors.New("model unavailable")
	}
	return intent.ParseIntent(raw)
}

type testEnv struct {
	*testutil.TestServer
	user      uuid.UUID
	messenger *recordingMessenger
}

// setupTestServer wires the application against an in-memory store and
// returns a server authenticated as a fresh user.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	testCfg := &config.Config{
		ListenAddr:            ":0",
		Debug:                 true,
		HTTPTimeout:           time.Second,
		Timezone:              "Asia/Jakarta",
		JWTSecret:             testutil.JWTSecret,
		TelegramWebhookSecret: webhookSecret,
	}

	db = testutil.NewTestStore(t)
	rec := &recordingMessenger{}
	messenger = rec
	classifier = cannedClassifier{
		"50rb BCA makan siang": `{"type":"expense","amount":50000,"wallet":"BCA","category":"Makan","note":"makan siang"}`,
	}
	t.Cleanup(func() {
		db, messenger, classifier = nil, nil, nil
	})

	if err := SetupDependencies(testCfg); err != nil {
		t.Fatalf("Failed to setup dependencies: %v", err)
	}

	user := uuid.New()
	ts := testutil.NewTestServer(t, SetupRouter()).As(user)
	return &testEnv{TestServer: ts, user: user, messenger: rec}
}

func (e *testEnv) wallet(t *testing.T, name string, balance int64) models.Wallet {
	t.Helper()
	return testutil.MustWallet(t, db, e.user, name, balance)
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`).
		JSONField("database", "sqlite")
}

func TestAPIRequiresToken(t *testing.T) {
	ts := setupTestServer(t)
	anon := *ts.TestServer
	anon.Token = ""

	testutil.AssertResponse(t, anon.GET("/api/wallets")).
		Status(http.StatusUnauthorized).
		Contains("missing auth token")

	anon.Token = "not-a-jwt"
	testutil.AssertResponse(t, anon.GET("/api/wallets")).
		Status(http.StatusUnauthorized)
}

func TestWalletLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	var created models.Wallet
	resp := ts.POST("/api/wallets", map[string]any{"name": "BCA", "acronym": " bca ", "balance": "1000000"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create wallet: status %d: %s", resp.StatusCode, testutil.ReadBody(t, resp))
	}
	testutil.DecodeJSON(t, resp, &created)
	if created.Acronym != "BCA" || created.Color != models.DefaultWalletColor {
		t.Errorf("Unexpected wallet: %+v", created)
	}

	ts.wallet(t, "Mandiri", 500_000)
	testutil.AssertResponse(t, ts.GET("/api/wallets")).
		StatusOK().
		JSONField("total", "1500000")

	path := "/api/wallets/" + created.ID.String()
	testutil.AssertResponse(t, ts.PATCH(path, map[string]any{"balance": "1200000"})).
		StatusOK().
		JSONField("balance", "1200000").
		JSONField("opening_balance", "1200000")

	testutil.AssertResponse(t, ts.GET("/api/wallets/reconcile")).
		StatusOK().
		Contains(`"consistent":true`)

	testutil.AssertResponse(t, ts.POST("/api/wallets", map[string]any{"name": "  "})).
		Status(http.StatusBadRequest)

	testutil.AssertResponse(t, ts.DELETE(path)).Status(http.StatusNoContent)
	testutil.AssertResponse(t, ts.GET(path)).Status(http.StatusNotFound)
}

func TestWalletsAreScopedToOwner(t *testing.T) {
	ts := setupTestServer(t)
	w := ts.wallet(t, "BCA", 1_000)

	other := ts.As(uuid.New())
	testutil.AssertResponse(t, other.GET("/api/wallets/"+w.ID.String())).
		Status(http.StatusNotFound)
	testutil.AssertResponse(t, other.GET("/api/wallets")).
		StatusOK().
		JSONField("total", "0")
}

func TestTransactionCreateAndDelete(t *testing.T) {
	ts := setupTestServer(t)
	bca := ts.wallet(t, "BCA", 1_000_000)

	resp := ts.POST("/api/transactions", map[string]any{
		"type":     "expense",
		"amount":   "50rb",
		"wallet":   "bca",
		"category": "Makan",
		"note":     "makan siang",
	})
	var created struct {
		Transaction models.Transaction `json:"transaction"`
		Wallet      models.Wallet      `json:"wallet"`
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction: status %d: %s", resp.StatusCode, testutil.ReadBody(t, resp))
	}
	testutil.DecodeJSON(t, resp, &created)
	if got := created.Transaction.Amount.String(); got != "-50000" {
		t.Errorf("amount = %s, want -50000", got)
	}
	if got := testutil.Balance(t, db, ts.user, bca.ID).String(); got != "950000" {
		t.Errorf("balance = %s, want 950000", got)
	}

	testutil.AssertResponse(t, ts.GET("/api/transactions?type=expense")).
		StatusOK().
		ContainsAll(`"wallet_name":"BCA"`, `"category_name":"Makan"`)

	testutil.AssertResponse(t, ts.GET("/api/transactions/"+created.Transaction.ID.String())).
		StatusOK().
		JSONField("note", "makan siang")

	testutil.AssertResponse(t, ts.DELETE("/api/transactions/"+created.Transaction.ID.String())).
		StatusOK().
		Contains(created.Transaction.ID.String())
	if got := testutil.Balance(t, db, ts.user, bca.ID).String(); got != "1000000" {
		t.Errorf("balance after delete = %s, want 1000000", got)
	}
}

func TestTransactionValidation(t *testing.T) {
	ts := setupTestServer(t)
	ts.wallet(t, "BCA", 1_000)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"unknown wallet", map[string]any{"type": "expense", "amount": 10, "wallet": "Jago"}, http.StatusNotFound},
		{"zero amount", map[string]any{"type": "expense", "amount": 0, "wallet": "BCA"}, http.StatusBadRequest},
		{"bad type", map[string]any{"type": "gift", "amount": 10, "wallet": "BCA"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"type": "expense", "amount": 10, "wallet": "BCA", "extra": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertResponse(t, ts.POST("/api/transactions", tt.body)).Status(tt.status)
		})
	}
}

func TestTransfer(t *testing.T) {
	ts := setupTestServer(t)
	bca := ts.wallet(t, "BCA", 1_000_000)
	gopay := ts.wallet(t, "GoPay", 0)

	testutil.AssertResponse(t, ts.POST("/api/transfers", map[string]any{
		"amount": "2jt", "from_wallet_id": bca.ID, "to_wallet_id": gopay.ID,
	})).
		Status(http.StatusBadRequest).
		Contains("Saldo wallet asal tidak mencukupi")

	testutil.AssertResponse(t, ts.POST("/api/transfers", map[string]any{
		"amount": "200rb", "from_wallet": "BCA", "to_wallet": "BCA",
	})).Status(http.StatusBadRequest)

	resp := ts.POST("/api/transfers", map[string]any{
		"amount": "200rb", "from_wallet_id": bca.ID, "to_wallet_id": gopay.ID, "note": "topup",
	})
	var created struct {
		Debit models.Transaction `json:"debit"`
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("transfer: status %d: %s", resp.StatusCode, testutil.ReadBody(t, resp))
	}
	testutil.DecodeJSON(t, resp, &created)

	if got := testutil.Balance(t, db, ts.user, bca.ID).String(); got != "800000" {
		t.Errorf("BCA = %s, want 800000", got)
	}
	if got := testutil.Balance(t, db, ts.user, gopay.ID).String(); got != "200000" {
		t.Errorf("GoPay = %s, want 200000", got)
	}

	// Wallets with transactions cannot be deleted.
	testutil.AssertResponse(t, ts.DELETE("/api/wallets/"+gopay.ID.String())).
		Status(http.StatusConflict)

	// Deleting one leg removes both.
	testutil.AssertResponse(t, ts.DELETE("/api/transactions/"+created.Debit.ID.String())).StatusOK()
	if got := testutil.Balance(t, db, ts.user, gopay.ID).String(); got != "0" {
		t.Errorf("GoPay after delete = %s, want 0", got)
	}
	testutil.AssertResponse(t, ts.GET("/api/transactions")).StatusOK().Contains("[]")
}

func TestCategories(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/api/categories?type=income")).
		StatusOK().
		Contains(`"name":"Gaji"`).
		NotContains(`"name":"Makan"`)

	testutil.AssertResponse(t, ts.POST("/api/categories", map[string]any{"name": "makan", "type": "expense"})).
		Status(http.StatusConflict)

	resp := ts.POST("/api/categories", map[string]any{"name": "Kopi", "type": "expense"})
	var c models.Category
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: status %d: %s", resp.StatusCode, testutil.ReadBody(t, resp))
	}
	testutil.DecodeJSON(t, resp, &c)

	testutil.AssertResponse(t, ts.DELETE("/api/categories/"+c.ID.String())).Status(http.StatusNoContent)
	testutil.AssertResponse(t, ts.GET("/api/categories")).StatusOK().NotContains(`"name":"Kopi"`)
}

func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	ts.wallet(t, "BCA", 1_000_000)

	for _, body := range []map[string]any{
		{"type": "income", "amount": "5jt", "wallet": "BCA", "category": "Gaji"},
		{"type": "expense", "amount": "50rb", "wallet": "BCA", "category": "Makan"},
	} {
		testutil.AssertResponse(t, ts.POST("/api/transactions", body)).Status(http.StatusCreated)
	}

	testutil.AssertResponse(t, ts.GET("/api/dashboard?period=month")).
		StatusOK().
		JSONField("balance", "5950000").
		JSONField("total_income", "5000000").
		JSONField("total_expenses", "50000").
		JSONField("net", "4950000")

	testutil.AssertResponse(t, ts.GET("/api/dashboard?wallet=nope")).Status(http.StatusBadRequest)
	testutil.AssertResponse(t, ts.GET("/api/dashboard?wallet="+uuid.NewString())).Status(http.StatusNotFound)
}

func TestExports(t *testing.T) {
	ts := setupTestServer(t)
	ts.wallet(t, "BCA", 1_000_000)

	testutil.AssertResponse(t, ts.GET("/api/export/csv")).
		Status(http.StatusNotFound).
		Contains("tidak ada data transaksi")

	testutil.AssertResponse(t, ts.POST("/api/transactions", map[string]any{
		"type": "expense", "amount": "12.500,50", "wallet": "BCA", "category": "Makan",
	})).Status(http.StatusCreated)

	testutil.AssertResponse(t, ts.GET("/api/export/csv")).
		StatusOK().
		ContentType("text/csv").
		Header("Content-Disposition", "MyFinance_Export_").
		ContainsAll("Tanggal,Wallet,Kategori,Tipe,Jumlah,Catatan", "12500.5", "RINGKASAN", "SALDO WALLET")

	testutil.AssertResponse(t, ts.GET("/api/export/pdf")).
		StatusOK().
		ContentType("application/pdf").
		Header("Content-Disposition", ".pdf").
		Contains("%PDF-")

	testutil.AssertResponse(t, ts.GET("/api/export/csv?from=2025-02-01&to=2025-01-01")).
		Status(http.StatusBadRequest)
}

func webhookUpdate(userID int64, text string) string {
	return fmt.Sprintf(`{"update_id":1,"message":{"message_id":1,"date":0,`+
		`"from":{"id":%d,"is_bot":false,"first_name":"Budi","username":"budi"},`+
		`"chat":{"id":%d,"type":"private"},"text":%q}}`, userID, userID, text)
}

func (e *testEnv) webhook(t *testing.T, secret, body string) *http.Response {
	t.Helper()
	return e.Do(http.MethodPost, "/api/telegram/webhook", body, map[string]string{
		telegramhandlers.SecretHeader: secret,
	})
}

func TestWebhook(t *testing.T) {
	ts := setupTestServer(t)
	bca := ts.wallet(t, "BCA", 1_000_000)
	const tgUser = 777

	testutil.AssertResponse(t, ts.GET("/api/telegram/webhook")).
		StatusOK().
		Contains("Webhook is active")

	testutil.AssertResponse(t, ts.webhook(t, "wrong", webhookUpdate(tgUser, "/help"))).
		Status(http.StatusUnauthorized)
	testutil.AssertResponse(t, ts.webhook(t, webhookSecret, "{not json")).
		Status(http.StatusBadRequest)

	// Not linked yet.
	testutil.AssertResponse(t, ts.webhook(t, webhookSecret, webhookUpdate(tgUser, "50rb BCA makan siang"))).
		StatusOK().
		Contains(`"ok":true`)
	if got := ts.messenger.last(t); !strings.Contains(got, "belum terhubung") {
		t.Errorf("Expected not-connected reply, got %q", got)
	}

	var link models.TelegramLink
	resp := ts.POST("/api/telegram/token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create token: status %d: %s", resp.StatusCode, testutil.ReadBody(t, resp))
	}
	testutil.DecodeJSON(t, resp, &link)
	if len(link.ConnectionToken) != 16 {
		t.Fatalf("token %q should have 16 characters", link.ConnectionToken)
	}

	testutil.AssertResponse(t, ts.webhook(t, webhookSecret, webhookUpdate(tgUser, "/start "+link.ConnectionToken))).StatusOK()
	if got := ts.messenger.last(t); !strings.Contains(got, "Berhasil terhubung") {
		t.Errorf("Expected connected reply, got %q", got)
	}

	testutil.AssertResponse(t, ts.webhook(t, webhookSecret, webhookUpdate(tgUser, "50rb BCA makan siang"))).StatusOK()
	if got := testutil.Balance(t, db, ts.user, bca.ID).String(); got != "950000" {
		t.Errorf("BCA = %s, want 950000", got)
	}

	testutil.AssertResponse(t, ts.GET("/api/telegram/token")).
		StatusOK().
		JSONField("is_connected", "true")

	testutil.AssertResponse(t, ts.DELETE("/api/telegram/token")).StatusOK()
	testutil.AssertResponse(t, ts.webhook(t, webhookSecret, webhookUpdate(tgUser, "/saldo"))).StatusOK()
	if got := ts.messenger.last(t); !strings.Contains(got, "belum terhubung") {
		t.Errorf("Expected not-connected reply after disconnect, got %q", got)
	}
}

func TestWebhookIgnoresNonMessageUpdates(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.webhook(t, webhookSecret, `{"update_id":5,"edited_message":{"message_id":1,"date":0}}`)).
		StatusOK().
		Contains(`"ok":true`)
	if len(ts.messenger.sent) != 0 {
		t.Errorf("Expected no reply, got %d", len(ts.messenger.sent))
	}
}
