package intent

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

var wallets = []string{"BCA", "Mandiri", "GoPay", "Bank Jago", "Jago"}

func TestDetectBalanceQuery(t *testing.T) {
	tests := []struct {
		text       string
		wantOK     bool
		wantWallet string
	}{
		{"cek saldo", true, ""},
		{"Cek saldo BCA", true, "BCA"},
		{"saldo gopay berapa", true, "GoPay"},
		{"sisa uang di bank jago", true, "Bank Jago"},
		{"/saldo", true, ""},
		{"/ceksaldo mandiri", true, "mandiri"},
		{"/saldo@myfinance_bot BCA", true, "BCA"},
		{"/SALDO Bank Jago", true, "Bank Jago"},
		{"/saldonya", false, ""},
		{"50rb BCA makan siang", false, ""},
		{"uang masuk 50rb BCA", false, ""},
		{"uang masuk dari kantor", false, ""},
		{"bayar listrik pakai saldo", false, ""},
		{"sisa 20rb", false, ""},
		{"Gaji 5jt Mandiri", false, ""},
		{"halo", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q, ok := DetectBalanceQuery(tt.text, wallets)
			if ok != tt.wantOK {
				t.Fatalf("DetectBalanceQuery(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if q.Wallet != tt.wantWallet {
				t.Errorf("wallet = %q, want %q", q.Wallet, tt.wantWallet)
			}
		})
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Intent
	}{
		{
			name: "expense",
			raw:  `{"type":"expense","amount":50000,"wallet":"BCA","category":"Makan","note":"makan siang"}`,
			want: Intent{Type: Expense, Amount: decimal.NewFromInt(50000), Wallet: "BCA", Category: "Makan", Note: "makan siang"},
		},
		{
			name: "income with fenced json",
			raw:  "```json\n{\"type\":\"income\",\"amount\":5000000,\"wallet\":\"Mandiri\",\"category\":\"Gaji\",\"note\":null}\n```",
			want: Intent{Type: Income, Amount: decimal.NewFromInt(5000000), Wallet: "Mandiri", Category: "Gaji"},
		},
		{
			name: "shorthand amount string",
			raw:  `{"type":"expense","amount":"15rb","wallet":"GoPay","category":"Transport"}`,
			want: Intent{Type: Expense, Amount: decimal.NewFromInt(15000), Wallet: "GoPay", Category: "Transport"},
		},
		{
			name: "transfer",
			raw:  `{"type":"transfer","amount":200000,"wallet":"BCA","to_wallet":"GoPay"}`,
			want: Intent{Type: Transfer, Amount: decimal.NewFromInt(200000), Wallet: "BCA", ToWallet: "GoPay"},
		},
		{
			name: "balance check needs nothing else",
			raw:  `{"type":"check_balance","wallet":null}`,
			want: Intent{Type: CheckBalance},
		},
		{
			name: "type is case insensitive",
			raw:  `{"type":"EXPENSE","amount":1000,"wallet":"BCA","category":"Makan"}`,
			want: Intent{Type: Expense, Amount: decimal.NewFromInt(1000), Wallet: "BCA", Category: "Makan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntent(tt.raw)
			if err != nil {
				t.Fatalf("ParseIntent: %v", err)
			}
			if got.Type != tt.want.Type || got.Wallet != tt.want.Wallet ||
				got.ToWallet != tt.want.ToWallet || got.Category != tt.want.Category ||
				got.Note != tt.want.Note {
				t.Errorf("ParseIntent = %+v, want %+v", got, tt.want)
			}
			if !got.Amount.Equal(tt.want.Amount) {
				t.Errorf("amount = %s, want %s", got.Amount, tt.want.Amount)
			}
		})
	}
}

func TestParseIntentRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "maaf, saya tidak mengerti"},
		{"unknown type", `{"type":"loan","amount":1000,"wallet":"BCA","category":"X"}`},
		{"missing amount", `{"type":"expense","wallet":"BCA","category":"Makan"}`},
		{"zero amount", `{"type":"expense","amount":0,"wallet":"BCA","category":"Makan"}`},
		{"negative amount", `{"type":"expense","amount":-5,"wallet":"BCA","category":"Makan"}`},
		{"garbage amount", `{"type":"expense","amount":"banyak","wallet":"BCA","category":"Makan"}`},
		{"missing wallet", `{"type":"income","amount":1000,"category":"Gaji"}`},
		{"missing category", `{"type":"expense","amount":1000,"wallet":"BCA"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseIntent(tt.raw); err == nil {
				t.Errorf("ParseIntent(%s) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestParseIntentTransferWithoutTarget(t *testing.T) {
	_, err := ParseIntent(`{"type":"transfer","amount":1000,"wallet":"BCA"}`)
	if !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("err = %v, want ErrMissingTarget", err)
	}
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("ErrMissingTarget should also match ErrUnparseable")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Request{
		Text:       "50rb BCA makan siang",
		Wallets:    []string{"BCA", "GoPay"},
		Categories: []string{"Makan", "Transport"},
	})

	for _, want := range []string{
		"Daftar wallet user: BCA, GoPay.",
		"Daftar kategori: Makan, Transport.",
		`Pesan user: "50rb BCA makan siang"`,
		"check_balance",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	bare := BuildPrompt(Request{Text: "halo"})
	if strings.Contains(bare, "Daftar wallet") {
		t.Error("prompt without wallets should not list wallets")
	}
}
