package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type call struct {
	method string
	form   url.Values
}

func newAPI(t *testing.T, result string) (*Client, *[]call) {
	t.Helper()
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		parts := strings.Split(r.URL.Path, "/")
		calls = append(calls, call{method: parts[len(parts)-1], form: r.PostForm})
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ok":true,"result":%s}`, result)
	}))
	t.Cleanup(srv.Close)

	c, err := New("123:abc", srv.URL+"/bot%s/%s", 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &calls
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New("", "", time.Second); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSend(t *testing.T) {
	c, calls := newAPI(t, `{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}`)

	if err := c.Send(context.Background(), 42, "<b>halo</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(*calls))
	}
	got := (*calls)[0]
	if got.method != "sendMessage" {
		t.Errorf("method = %s", got.method)
	}
	if got.form.Get("chat_id") != "42" || got.form.Get("text") != "<b>halo</b>" || got.form.Get("parse_mode") != "HTML" {
		t.Errorf("form = %v", got.form)
	}
}

func TestSetWebhook(t *testing.T) {
	c, calls := newAPI(t, `true`)

	if err := c.SetWebhook(context.Background(), "https://example.com/api/telegram/webhook", "s3cret"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}

	got := (*calls)[0]
	if got.method != "setWebhook" {
		t.Errorf("method = %s", got.method)
	}
	if got.form.Get("url") != "https://example.com/api/telegram/webhook" {
		t.Errorf("url = %q", got.form.Get("url"))
	}
	if got.form.Get("secret_token") != "s3cret" {
		t.Errorf("secret_token = %q", got.form.Get("secret_token"))
	}
	if got.form.Get("allowed_updates") != `["message"]` {
		t.Errorf("allowed_updates = %q", got.form.Get("allowed_updates"))
	}
}

func TestDeleteWebhook(t *testing.T) {
	c, calls := newAPI(t, `true`)

	if err := c.DeleteWebhook(context.Background(), true); err != nil {
		t.Fatalf("DeleteWebhook: %v", err)
	}
	got := (*calls)[0]
	if got.method != "deleteWebhook" || got.form.Get("drop_pending_updates") != "true" {
		t.Errorf("call = %+v", got)
	}
}

func TestAPIErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	}))
	defer srv.Close()

	c, err := New("123:abc", srv.URL+"/bot%s/%s", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Send(context.Background(), 1, "x")
	if err == nil || !strings.Contains(err.Error(), "blocked") {
		t.Errorf("err = %v, want the API description", err)
	}
}

func TestCanceledContext(t *testing.T) {
	c, _ := newAPI(t, `true`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.DeleteWebhook(ctx, false); err == nil {
		t.Error("expected error for canceled context")
	}
}
