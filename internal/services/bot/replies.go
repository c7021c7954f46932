package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/money"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
)

// Fixed replies. Everything sent to Telegram is HTML.
const (
	ReplyWelcome = "👋 <b>Selamat datang di MyFinance Bot!</b>\n\n" +
		"Untuk menghubungkan akun:\n" +
		"1. Buka aplikasi MyFinance\n" +
		"2. Pergi ke Pengaturan\n" +
		"3. Copy Secret Key\n" +
		"4. Ketik: <code>/start [secret_key]</code>\n\n" +
		"Contoh: <code>/start abc123xyz</code>"

	ReplyInvalidToken = "❌ Secret key tidak valid. Pastikan Anda menyalin dengan benar dari Pengaturan MyFinance."
	ReplyConnectFail  = "❌ Gagal menghubungkan. Silakan coba lagi."

	ReplyConnected = "✅ <b>Berhasil terhubung!</b>\n\n" +
		"Sekarang Anda bisa mencatat transaksi langsung dari sini.\n\n" +
		"<b>Contoh:</b>\n" +
		"• <code>50rb BCA makan siang</code>\n" +
		"• <code>Gaji 5jt Mandiri</code>\n" +
		"• <code>Transport 15k GoPay</code>\n\n" +
		"Ketik /help untuk bantuan."

	ReplyHelp = "📖 <b>Cara Penggunaan</b>\n\n" +
		"Ketik transaksi dengan format:\n" +
		"<code>[jumlah] [wallet] [keterangan]</code>\n\n" +
		"<b>Contoh Pengeluaran:</b>\n" +
		"• <code>50rb BCA makan</code>\n" +
		"• <code>100k GoPay belanja</code>\n" +
		"• <code>25.000 OVO transport</code>\n\n" +
		"<b>Contoh Pemasukan:</b>\n" +
		"• <code>Gaji 5jt Mandiri</code>\n" +
		"• <code>Terima transfer 500k BCA</code>\n\n" +
		"<b>Contoh Transfer:</b>\n" +
		"• <code>Transfer 200rb BCA ke GoPay</code>\n\n" +
		"<b>Perintah:</b>\n" +
		"/saldo [wallet] - Cek saldo\n" +
		"/help - Tampilkan bantuan\n" +
		"/disconnect - Putuskan koneksi"

	ReplyDisconnected    = "👋 Koneksi diputus. Untuk menghubungkan kembali, gunakan /start [secret_key]"
	ReplyDisconnectFail  = "❌ Gagal memutuskan koneksi."
	ReplyNotConnected    = "⚠️ Akun belum terhubung.\n\nGunakan /start [secret_key] untuk menghubungkan akun MyFinance."
	ReplyNotUnderstood   = "❌ Gagal memahami pesan. Coba format seperti <code>50rb BCA makan siang</code>."
	ReplySaveFailed      = "❌ Gagal menyimpan transaksi."
	ReplyInternalError   = "❌ Terjadi kesalahan. Silakan coba lagi."
	ReplyMissingTarget   = "❌ Transfer harus menyebutkan wallet TUJUAN."
	ReplySameWallet      = "❌ Wallet asal dan tujuan tidak boleh sama."
	ReplyInvalidAmount   = "❌ Jumlah harus lebih dari 0 dan paling banyak 2 angka desimal."
	noWalletsPlaceholder = "Belum ada wallet"
)

// FormatBalances renders a balance report for one wallet or all of them.
func FormatBalances(r *ledger.BalanceReport) string {
	if r.Single != nil {
		return fmt.Sprintf("💰 <b>Saldo %s</b>\n%s", esc(r.Single.Name), money.FormatIDR(r.Single.Balance))
	}

	var b strings.Builder
	b.WriteString("💰 <b>Saldo Semua Wallet</b>\n\n")
	if len(r.Wallets) == 0 {
		b.WriteString(noWalletsPlaceholder + "\n")
	}
	for _, w := range r.Wallets {
		fmt.Fprintf(&b, "🔹 %s: %s\n", esc(w.Name), money.FormatIDR(w.Balance))
	}
	fmt.Fprintf(&b, "\n<b>Total: %s</b>", money.FormatIDR(r.Total))
	return b.String()
}

// FormatWalletNotFound explains which wallet name failed and lists the
// wallets that exist.
func FormatWalletNotFound(e *ledger.WalletNotFoundError) string {
	available := noWalletsPlaceholder
	if len(e.Available) > 0 {
		available = esc(strings.Join(e.Available, ", "))
	}

	switch e.Role {
	case ledger.RoleSource:
		return fmt.Sprintf("❌ Wallet asal \"%s\" tidak ditemukan.\n\n<b>Wallet tersedia:</b> %s", esc(e.Name), available)
	case ledger.RoleTarget:
		return fmt.Sprintf("❌ Wallet tujuan \"%s\" tidak ditemukan.\n\n<b>Wallet tersedia:</b> %s", esc(e.Name), available)
	}
	return fmt.Sprintf("❌ Wallet \"%s\" tidak ditemukan.\n\n<b>Wallet tersedia:</b> %s", esc(e.Name), available)
}

// FormatRecorded confirms a saved income or expense.
func FormatRecorded(r *ledger.RecordResult) string {
	emoji, sign := "💰", "+"
	if r.Transaction.Type() == models.Expense {
		emoji, sign = "💸", "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Transaksi Tersimpan!</b>\n\n", emoji)
	fmt.Fprintf(&b, "%s%s\n", sign, money.FormatIDR(r.Transaction.AbsAmount()))
	fmt.Fprintf(&b, "📁 %s\n", esc(r.Category.Name))
	fmt.Fprintf(&b, "💳 %s", esc(r.Wallet.Name))
	if r.Transaction.Note != "" {
		fmt.Fprintf(&b, "\n📝 %s", esc(r.Transaction.Note))
	}
	return b.String()
}

// FormatTransfer confirms a saved transfer. note is the user's note
// without the "Transfer ke" prefix the ledger adds.
func FormatTransfer(r *ledger.TransferResult, note string) string {
	if note = strings.TrimSpace(note); note == "" {
		note = "-"
	}
	return "✅ <b>Transfer Berhasil!</b>\n\n" +
		fmt.Sprintf("💸 <b>%s</b>\n", money.FormatIDR(r.Credit.Amount)) +
		fmt.Sprintf("📤 %s → 📥 %s\n", esc(r.From.Name), esc(r.To.Name)) +
		fmt.Sprintf("📝 %s", esc(note))
}

func esc(s string) string {
	return html.EscapeString(s)
}
