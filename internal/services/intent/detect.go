package intent

import (
	"regexp"
	"strings"
)

// Balance keywords (lowercase, whole words)
var BalanceKeywords = []string{"cek", "saldo", "sisa", "uang"}

// Keywords that mark a message as a transaction even when it mentions a
// balance keyword, e.g. "uang masuk 50rb" or "beli saldo".
var TransactionKeywords = []string{"beli", "bayar", "transfer", "masuk", "keluar", "habis"}

// BalanceCommands are slash commands that always ask for a balance.
var BalanceCommands = []string{"/saldo", "/ceksaldo"}

var (
	balancePattern     = wordPattern(BalanceKeywords)
	transactionPattern = wordPattern(TransactionKeywords)
	digitPattern       = regexp.MustCompile(`\d`)
)

func wordPattern(words []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

// BalanceQuery is a balance question recognized without the classifier.
type BalanceQuery struct {
	// Wallet is the wallet asked about; empty means all wallets.
	Wallet string
}

// DetectBalanceQuery recognizes balance questions by keyword so they never
// reach the classifier. It matches the /saldo and /ceksaldo commands, any
// message containing "cek saldo", and messages with a balance keyword but
// no digits and no transaction keyword. Anything else is left to the
// classifier, whose answer is then authoritative.
func DetectBalanceQuery(text string, walletNames []string) (BalanceQuery, bool) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	for _, cmd := range BalanceCommands {
		if arg, ok := commandArg(text, cmd); ok {
			return BalanceQuery{Wallet: arg}, true
		}
	}

	explicit := strings.Contains(lower, "cek saldo")
	implicit := balancePattern.MatchString(text) &&
		!transactionPattern.MatchString(text) &&
		!digitPattern.MatchString(text)
	if !explicit && !implicit {
		return BalanceQuery{}, false
	}

	return BalanceQuery{Wallet: mentionedWallet(lower, walletNames)}, true
}

// commandArg returns the text after cmd, as typed, when text starts with
// it as a whole word in any case. The "/cmd@botname" form is accepted.
func commandArg(text, cmd string) (string, bool) {
	if len(text) < len(cmd) || !strings.EqualFold(text[:len(cmd)], cmd) {
		return "", false
	}
	rest := text[len(cmd):]
	if strings.HasPrefix(rest, "@") {
		if i := strings.IndexByte(rest, ' '); i >= 0 {
			rest = rest[i:]
		} else {
			rest = ""
		}
	}
	if rest != "" && rest[0] != ' ' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// mentionedWallet returns the longest wallet name contained in the text,
// so "Bank Jago" wins over "Jago".
func mentionedWallet(lower string, walletNames []string) string {
	best := ""
	for _, name := range walletNames {
		n := strings.ToLower(strings.TrimSpace(name))
		if n != "" && strings.Contains(lower, n) && len(n) > len(best) {
			best = name
		}
	}
	return best
}
