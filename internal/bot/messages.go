package bot

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Keyboard button labels, shared by both flows. The texts are the bots'
// observable interface and stay as shipped.
const (
	btnPurchase = "🛒 ZAKUP"
	btnAccount  = "👤 KONTO"
	btnHelp     = "❓ POMOC"

	btnBack   = "⬅️ Powrót"
	btnCancel = "⬅️ Anuluj"

	btnCash = "💵 Gotówka"
	btnBlik = "💳 Przelew BLIK"

	btnHelpBulk      = "📦 Zakup większej ilości"
	btnHelpComplaint = "⚠️ Reklamacja"

	btnPendingAccounts = "📋 Oczekujące konta"
	btnAllOrders       = "📦 Wszystkie zamówienia"
	btnAllUsers        = "👥 Wszyscy użytkownicy"
	btnAddOffer        = "🎁 Dodaj ofertę specjalną"
	btnStatistics      = "📊 Statystyki"
)

// fmtAmount renders prices and gram quantities the way a human would type
// them: 60, 10.5, 750.
func fmtAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// displayName is the handle persisted on orders and requests: the Telegram
// username when present, the first name otherwise.
func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return u.FirstName
}

// mentionName is how the customer appears in admin-facing notifications.
func mentionName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return "@" + u.FirstName
}
