package bot

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop_bots/internal/config"
	"shop_bots/internal/model"
	"shop_bots/internal/store"
)

func newCustomerBot(t *testing.T) (*CustomerBot, *fakeSender, *store.Store) {
	t.Helper()
	f := newFakeSender()
	st := newBotStore(t)
	return NewCustomerBot(f, st, config.DefaultCatalog(), testAdminID, nil), f, st
}

func approveUser(t *testing.T, st *store.Store, telegramID int64, username string) {
	t.Helper()
	pending, err := st.CreatePendingAccount(telegramID, username, "haslo")
	require.NoError(t, err)
	_, ok, err := st.ApproveAccount(pending.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCustomerStart(t *testing.T) {
	b, f, _ := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))

	msgs := f.messagesTo(42)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Witaj Jan!")
	markup, ok := msgs[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, markup.Keyboard, 3)
}

// Messages before /start never enter the conversation.
func TestCustomerIgnoresStrayText(t *testing.T) {
	b, f, _ := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan"}

	b.handleMessage(textMsg(jan, 42, "hej"))
	assert.Empty(t, f.messagesTo(42))
}

func TestCustomerUnknownSectionChoice(t *testing.T) {
	b, f, _ := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, "cokolwiek"))

	assert.Equal(t, "Wybierz jedną z opcji z menu.", f.lastTextTo(t, 42))
}

// An unregistered buyer completes a full purchase; the order has no owner.
func TestPurchaseUnregistered(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnPurchase))
	b.handleMessage(textMsg(jan, 42, "💎 Diament"))
	b.handleMessage(textMsg(jan, 42, "15"))

	summary := f.lastTextTo(t, 42)
	assert.Contains(t, summary, "PODSUMOWANIE")
	assert.Contains(t, summary, "Rabat: -10 zł/g")
	assert.Contains(t, summary, "RAZEM: 750 zł")

	b.handleMessage(textMsg(jan, 42, btnCash))

	orders, err := st.AllOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Nil(t, o.UserID)
	assert.Equal(t, "@jan", o.Username)
	assert.Equal(t, "Diament", o.ProductName)
	assert.Equal(t, float64(15), o.Quantity)
	assert.Equal(t, float64(50), o.UnitPrice)
	assert.InDelta(t, 750, o.TotalPrice, 1e-9)
	assert.Equal(t, "Gotówka", o.PaymentMethod)
	assert.Equal(t, model.OrderStatusPending, o.Status)

	adminTexts := f.textsTo(testAdminID)
	require.Len(t, adminTexts, 1)
	assert.Contains(t, adminTexts[0], "🔔 NOWE ZAMÓWIENIE #1")
	assert.Contains(t, adminTexts[0], "Klient: @jan")

	custTexts := f.textsTo(42)
	// confirmation followed by the top menu greeting
	require.GreaterOrEqual(t, len(custTexts), 2)
	assert.Contains(t, custTexts[len(custTexts)-2], "✅ Zamówienie złożone!")
	assert.Contains(t, custTexts[len(custTexts)-1], "Witaj Jan!")
}

func TestPurchaseRegisteredOwnsOrder(t *testing.T) {
	b, _, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}
	approveUser(t, st, 42, "@jan")

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnPurchase))
	b.handleMessage(textMsg(jan, 42, "🥦 Brokuł"))
	b.handleMessage(textMsg(jan, 42, "5"))
	b.handleMessage(textMsg(jan, 42, btnBlik))

	orders, err := st.AllOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].UserID)
	assert.Equal(t, int64(42), *orders[0].UserID)
	assert.Equal(t, "Przelew BLIK", orders[0].PaymentMethod)
}

func TestPurchaseShowsActiveOffers(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}
	approveUser(t, st, 42, "@jan")
	_, err := st.CreateSpecialOffer(42, "Diament Premium", "Tylko dziś", 45)
	require.NoError(t, err)

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnPurchase))

	text := f.lastTextTo(t, 42)
	assert.Contains(t, text, "🌟 TWOJE SPECJALNE OFERTY:")
	assert.Contains(t, text, "Diament Premium")
	assert.Contains(t, text, "💎 Diament - 60 zł/g")
	assert.Contains(t, text, "Od 30g: -20 zł/g")
}

// Bad quantities re-prompt in place; nothing is persisted until checkout.
func TestPurchaseQuantityValidation(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnPurchase))
	b.handleMessage(textMsg(jan, 42, "💎 Diament"))

	b.handleMessage(textMsg(jan, 42, "abc"))
	assert.Equal(t, "Podaj liczbę (np. 5 lub 10.5)", f.lastTextTo(t, 42))

	b.handleMessage(textMsg(jan, 42, "0"))
	assert.Equal(t, "Podaj prawidłową ilość (większą od 0).", f.lastTextTo(t, 42))

	b.handleMessage(textMsg(jan, 42, "-3"))
	assert.Equal(t, "Podaj prawidłową ilość (większą od 0).", f.lastTextTo(t, 42))

	orders, err := st.AllOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)

	// The state survived the re-prompts.
	b.handleMessage(textMsg(jan, 42, "10.5"))
	assert.Contains(t, f.lastTextTo(t, 42), "PODSUMOWANIE")
}

// A failed admin notification never rolls back the committed order or hides
// the customer confirmation.
func TestPurchaseSurvivesNotifyFailure(t *testing.T) {
	b, f, st := newCustomerBot(t)
	f.failChats[testAdminID] = true
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnPurchase))
	b.handleMessage(textMsg(jan, 42, "💎 Diament"))
	b.handleMessage(textMsg(jan, 42, "15"))
	b.handleMessage(textMsg(jan, 42, btnCash))

	orders, err := st.AllOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Empty(t, f.textsTo(testAdminID))
	joined := strings.Join(f.textsTo(42), "\n---\n")
	assert.Contains(t, joined, "✅ Zamówienie złożone!")
}

func TestNotifyWrapsError(t *testing.T) {
	f := newFakeSender()
	f.failChats[testAdminID] = true

	err := notify(f, tgbotapi.NewMessage(testAdminID, "x"))
	require.ErrorIs(t, err, ErrNotify)

	require.NoError(t, notify(f, tgbotapi.NewMessage(1, "x")))
}

func TestAccountRequestFlow(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnAccount))
	assert.Contains(t, f.lastTextTo(t, 42), "👤 UTWÓRZ KONTO")

	// handle must start with the marker character
	b.handleMessage(textMsg(jan, 42, "jan"))
	assert.Contains(t, f.lastTextTo(t, 42), "musi zaczynać się od @")

	b.handleMessage(textMsg(jan, 42, "@jan"))
	assert.Contains(t, f.lastTextTo(t, 42), "podaj hasło")

	// password over 8 characters re-prompts
	b.handleMessage(textMsg(jan, 42, "123456789"))
	assert.Contains(t, f.lastTextTo(t, 42), "maksymalnie 8 znaków")

	b.handleMessage(textMsg(jan, 42, "tajne"))

	pending, err := st.PendingAccounts()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(42), pending[0].TelegramID)
	assert.Equal(t, "@jan", pending[0].Username)
	assert.Equal(t, "tajne", pending[0].Password)

	adminMsgs := f.messagesTo(testAdminID)
	require.Len(t, adminMsgs, 1)
	assert.Contains(t, adminMsgs[0].Text, "🆕 WNIOSEK O KONTO #1")
	assert.Contains(t, adminMsgs[0].Text, "Hasło: tajne")
	markup, ok := adminMsgs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "approve_1", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "reject_1", *markup.InlineKeyboard[0][1].CallbackData)
}

func TestAccountRequestCancel(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnAccount))
	b.handleMessage(textMsg(jan, 42, btnCancel))

	pending, err := st.PendingAccounts()
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Contains(t, f.lastTextTo(t, 42), "Witaj Jan!")
}

func TestAccountViewCapsOrders(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}
	approveUser(t, st, 42, "@jan")
	uid := int64(42)
	for i := 0; i < 6; i++ {
		_, err := st.CreateOrder(&uid, "@jan", "Diament", 10, 50, 500, "Gotówka")
		require.NoError(t, err)
	}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnAccount))

	text := f.lastTextTo(t, 42)
	assert.Contains(t, text, "👤 TWOJE KONTO")
	assert.Contains(t, text, "Historia zakupów (6 zamówień)")
	assert.Equal(t, 5, strings.Count(text, "Gotówka"))
	assert.Contains(t, text, "... i 1 więcej")
	// most recent order first
	assert.Contains(t, text, "#6 - Diament")
}

func TestHelpComplaint(t *testing.T) {
	b, f, st := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnHelp))
	b.handleMessage(textMsg(jan, 42, btnHelpComplaint))
	b.handleMessage(textMsg(jan, 42, "Produkt uszkodzony"))

	// The store exposes no help-request listing; the auto-increment id of a
	// probe row shows the complaint landed first.
	probe, err := st.CreateHelpRequest(1, "x", model.HelpTypeBulk, "probe")
	require.NoError(t, err)
	require.Equal(t, uint(2), probe.ID)

	adminTexts := f.textsTo(testAdminID)
	require.Len(t, adminTexts, 1)
	assert.Contains(t, adminTexts[0], "⚠️ REKLAMACJA")
	assert.Contains(t, adminTexts[0], "Produkt uszkodzony")

	assert.Contains(t, strings.Join(f.textsTo(42), "\n"), "✅ Reklamacja została zgłoszona!")
}

func TestHelpBulkAmount(t *testing.T) {
	b, f, _ := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan", UserName: "jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnHelp))
	b.handleMessage(textMsg(jan, 42, btnHelpBulk))
	b.handleMessage(textMsg(jan, 42, "2000"))

	adminTexts := f.textsTo(testAdminID)
	require.Len(t, adminTexts, 1)
	assert.Contains(t, adminTexts[0], "📦 ZAPYTANIE O WIĘKSZĄ ILOŚĆ")
	assert.Contains(t, adminTexts[0], "Szacowana kwota: 2000 zł")
}

func TestCancelCommandClearsSession(t *testing.T) {
	b, f, _ := newCustomerBot(t)
	jan := &tgbotapi.User{ID: 42, FirstName: "Jan"}

	b.handleMessage(cmdMsg(jan, 42, "/start"))
	b.handleMessage(textMsg(jan, 42, btnPurchase))
	b.handleMessage(cmdMsg(jan, 42, "/cancel"))
	assert.Equal(t, "Anulowano.", f.lastTextTo(t, 42))

	// The session is gone; plain text is ignored until the next /start.
	before := len(f.textsTo(42))
	b.handleMessage(textMsg(jan, 42, "💎 Diament"))
	assert.Len(t, f.textsTo(42), before)
}
