// Package bot implements the customer and admin Telegram conversation flows.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shop_bots/internal/config"
	"shop_bots/internal/model"
	"shop_bots/internal/pricing"
	"shop_bots/internal/store"
	shopredis "shop_bots/pkg/redis"
)

// CustomerBot drives the ordering, account-request and help flows. One
// session per chat; inbound events are processed one at a time.
type CustomerBot struct {
	api     Sender
	store   *store.Store
	catalog config.Catalog
	adminID int64
	limiter *shopredis.Limiter

	mu       sync.RWMutex
	sessions map[int64]*customerSession
}

func NewCustomerBot(api Sender, st *store.Store, catalog config.Catalog, adminID int64, limiter *shopredis.Limiter) *CustomerBot {
	return &CustomerBot{
		api:      api,
		store:    st,
		catalog:  catalog,
		adminID:  adminID,
		limiter:  limiter,
		sessions: make(map[int64]*customerSession),
	}
}

// Run consumes the update stream until ctx is cancelled or the channel
// closes. A panic escaping a handler stops this flow only; the sibling admin
// flow keeps running.
func (b *CustomerBot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot klienta: przerwany: %v", r)
		}
	}()

	log.Printf("bot klienta uruchomiony")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *CustomerBot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.limiter.Allow(context.Background(), shopredis.RateLimitKey("customer", msg.From.ID)) {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.start(msg)
		case "cancel":
			b.resetSession(chatID)
			b.send(chatID, "Anulowano.", tgbotapi.NewRemoveKeyboard(false))
		}
		return
	}

	sess := b.session(chatID)
	if sess == nil {
		// Conversation starts with /start; stray texts are ignored.
		return
	}

	switch sess.state {
	case stateChoosingSection:
		b.handleSection(msg, sess)
	case stateChoosingProduct:
		b.handleProduct(msg, sess)
	case stateChoosingQuantity:
		b.handleQuantity(msg, sess)
	case stateChoosingPayment:
		b.handlePayment(msg, sess)
	case stateAccountUsername:
		b.handleAccountUsername(msg, sess)
	case stateAccountPassword:
		b.handleAccountPassword(msg, sess)
	case stateHelpType:
		b.handleHelpType(msg, sess)
	case stateHelpBulkAmount:
		b.handleBulkAmount(msg, sess)
	case stateHelpComplaint:
		b.handleComplaint(msg, sess)
	}
}

// start greets and resets the session to the top-level menu, dropping any
// scratch data.
func (b *CustomerBot) start(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.mu.Lock()
	b.sessions[chatID] = &customerSession{state: stateChoosingSection}
	b.mu.Unlock()

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnPurchase)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAccount)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHelp)),
	)
	text := fmt.Sprintf("Witaj %s! 👋\n\nWybierz jedną z opcji poniżej:", msg.From.FirstName)
	b.send(chatID, text, keyboard)
}

func (b *CustomerBot) handleSection(msg *tgbotapi.Message, sess *customerSession) {
	switch msg.Text {
	case btnPurchase:
		b.showProducts(msg, sess)
	case btnAccount:
		b.showAccount(msg, sess)
	case btnHelp:
		b.showHelp(msg, sess)
	default:
		b.send(msg.Chat.ID, "Wybierz jedną z opcji z menu.", nil)
	}
}

// showProducts renders the catalog, the caller's active special offers and
// the discount table, then waits for a product choice.
func (b *CustomerBot) showProducts(msg *tgbotapi.Message, sess *customerSession) {
	var sb strings.Builder
	sb.WriteString("📦 NASZE PRODUKTY:\n\n")

	user, err := b.store.UserByID(msg.From.ID)
	if err != nil {
		log.Printf("bot klienta: user lookup: %v", err)
	}
	if user != nil {
		offers, err := b.store.ActiveOffers(user.TelegramID)
		if err != nil {
			log.Printf("bot klienta: offers lookup: %v", err)
		}
		if len(offers) > 0 {
			sb.WriteString("🌟 TWOJE SPECJALNE OFERTY:\n")
			for _, o := range offers {
				fmt.Fprintf(&sb, "• %s - %s\n  Cena: %s zł/g\n\n", o.ProductName, o.Description, fmtAmount(o.Price))
			}
		}
	}

	for _, p := range b.catalog.Products {
		fmt.Fprintf(&sb, "%s %s - %s zł/g\n", p.Key, p.Name, fmtAmount(p.BasePrice))
	}
	sb.WriteString("\n📊 RABATY:\n")
	for _, t := range b.catalog.Tiers {
		fmt.Fprintf(&sb, "• Od %sg: -%s zł/g\n", fmtAmount(t.MinGrams), fmtAmount(t.Discount))
	}
	sb.WriteString("\nWybierz produkt:")

	row := make([]tgbotapi.KeyboardButton, 0, len(b.catalog.Products))
	for _, p := range b.catalog.Products {
		row = append(row, tgbotapi.NewKeyboardButton(p.Key+" "+p.Name))
	}
	keyboard := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)

	b.send(msg.Chat.ID, sb.String(), keyboard)
	sess.state = stateChoosingProduct
}

func (b *CustomerBot) handleProduct(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnBack {
		b.start(msg)
		return
	}

	product, ok := b.catalog.ProductByButton(msg.Text)
	if !ok {
		b.send(msg.Chat.ID, "Wybierz produkt z menu.", nil)
		return
	}

	sess.product = product
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	text := fmt.Sprintf("Wybrałeś: %s %s\n\nIle gramów chcesz kupić? (wpisz liczbę)", product.Name, product.Key)
	b.send(msg.Chat.ID, text, keyboard)
	sess.state = stateChoosingQuantity
}

func (b *CustomerBot) handleQuantity(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnBack {
		b.showProducts(msg, sess)
		return
	}

	quantity, err := strconv.ParseFloat(strings.TrimSpace(msg.Text), 64)
	if err != nil {
		b.send(msg.Chat.ID, "Podaj liczbę (np. 5 lub 10.5)", nil)
		return
	}
	if quantity <= 0 {
		b.send(msg.Chat.ID, "Podaj prawidłową ilość (większą od 0).", nil)
		return
	}

	quote := pricing.Calculate(sess.product.BasePrice, quantity, b.catalog.Tiers)
	sess.quantity = quantity
	sess.unitPrice = quote.UnitPrice
	sess.totalPrice = quote.TotalPrice

	var sb strings.Builder
	sb.WriteString("📝 PODSUMOWANIE:\n\n")
	fmt.Fprintf(&sb, "Produkt: %s %s\n", sess.product.Name, sess.product.Key)
	fmt.Fprintf(&sb, "Ilość: %sg\n", fmtAmount(quantity))
	fmt.Fprintf(&sb, "Cena bazowa: %s zł/g\n", fmtAmount(sess.product.BasePrice))
	if quote.Discount > 0 {
		fmt.Fprintf(&sb, "Rabat: -%s zł/g 🎉\n", fmtAmount(quote.Discount))
	}
	fmt.Fprintf(&sb, "Cena jednostkowa: %s zł/g\n", fmtAmount(quote.UnitPrice))
	fmt.Fprintf(&sb, "RAZEM: %s zł\n\n", fmtAmount(quote.TotalPrice))
	sb.WriteString("Wybierz metodę płatności:")

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCash),
			tgbotapi.NewKeyboardButton(btnBlik),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	b.send(msg.Chat.ID, sb.String(), keyboard)
	sess.state = stateChoosingPayment
}

func (b *CustomerBot) handlePayment(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnBack {
		b.start(msg)
		return
	}

	var paymentMethod string
	switch {
	case strings.Contains(msg.Text, "Gotówka"):
		paymentMethod = "Gotówka"
	case strings.Contains(msg.Text, "BLIK"):
		paymentMethod = "Przelew BLIK"
	default:
		b.send(msg.Chat.ID, "Wybierz metodę płatności z menu.", nil)
		return
	}

	// Purchases do not require registration: the owner reference stays nil
	// for unregistered buyers.
	var ownerID *int64
	user, err := b.store.UserByID(msg.From.ID)
	if err != nil {
		log.Printf("bot klienta: user lookup: %v", err)
	}
	if user != nil {
		ownerID = &user.TelegramID
	}

	order, err := b.store.CreateOrder(
		ownerID,
		displayName(msg.From),
		sess.product.Name,
		sess.quantity,
		sess.unitPrice,
		sess.totalPrice,
		paymentMethod,
	)
	if err != nil {
		log.Printf("bot klienta: create order: %v", err)
		b.send(msg.Chat.ID, "❌ Nie udało się złożyć zamówienia. Spróbuj ponownie.", nil)
		return
	}

	var admin strings.Builder
	fmt.Fprintf(&admin, "🔔 NOWE ZAMÓWIENIE #%d\n\n", order.ID)
	fmt.Fprintf(&admin, "Nr ref: %s\n", order.OrderNo)
	fmt.Fprintf(&admin, "Klient: %s\n", mentionName(msg.From))
	fmt.Fprintf(&admin, "Telegram ID: %d\n", msg.From.ID)
	fmt.Fprintf(&admin, "Produkt: %s %s\n", sess.product.Name, sess.product.Key)
	fmt.Fprintf(&admin, "Ilość: %sg\n", fmtAmount(sess.quantity))
	fmt.Fprintf(&admin, "Cena: %s zł\n", fmtAmount(sess.totalPrice))
	fmt.Fprintf(&admin, "Płatność: %s\n", paymentMethod)
	if err := notify(b.api, tgbotapi.NewMessage(b.adminID, admin.String())); err != nil {
		log.Printf("bot klienta: %v", err)
	}

	var confirm strings.Builder
	confirm.WriteString("✅ Zamówienie złożone!\n\n")
	fmt.Fprintf(&confirm, "Numer zamówienia: #%d\n", order.ID)
	fmt.Fprintf(&confirm, "Kwota do zapłaty: %s zł\n", fmtAmount(sess.totalPrice))
	fmt.Fprintf(&confirm, "Metoda płatności: %s\n\n", paymentMethod)
	confirm.WriteString("Skontaktujemy się z Tobą wkrótce! 📞")
	b.send(msg.Chat.ID, confirm.String(), nil)

	b.start(msg)
}

// showAccount displays the profile and recent orders for approved users, or
// begins the account-request flow for everyone else.
func (b *CustomerBot) showAccount(msg *tgbotapi.Message, sess *customerSession) {
	user, err := b.store.UserByID(msg.From.ID)
	if err != nil {
		log.Printf("bot klienta: user lookup: %v", err)
	}

	if user != nil {
		orders, err := b.store.UserOrders(user.TelegramID)
		if err != nil {
			log.Printf("bot klienta: orders lookup: %v", err)
		}

		var sb strings.Builder
		sb.WriteString("👤 TWOJE KONTO\n\n")
		fmt.Fprintf(&sb, "Nazwa użytkownika: %s\n", user.Username)
		sb.WriteString("Status: Zatwierdzone ✅\n\n")
		fmt.Fprintf(&sb, "📦 Historia zakupów (%d zamówień):\n\n", len(orders))

		shown := orders
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, o := range shown {
			fmt.Fprintf(&sb, "#%d - %s (%sg)\n", o.ID, o.ProductName, fmtAmount(o.Quantity))
			fmt.Fprintf(&sb, "   %s zł - %s\n", fmtAmount(o.TotalPrice), o.PaymentMethod)
			fmt.Fprintf(&sb, "   %s\n\n", fmtTime(o.CreatedAt))
		}
		if len(orders) > 5 {
			fmt.Fprintf(&sb, "... i %d więcej\n", len(orders)-5)
		}

		keyboard := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
		)
		b.send(msg.Chat.ID, sb.String(), keyboard)
		sess.state = stateChoosingSection
		return
	}

	var sb strings.Builder
	sb.WriteString("👤 UTWÓRZ KONTO\n\n")
	sb.WriteString("Aby utworzyć konto, będziesz potrzebować:\n")
	sb.WriteString("1. Nazwy użytkownika Telegram (zaczynającej się od @)\n")
	sb.WriteString("2. Hasła (max 8 znaków)\n\n")
	sb.WriteString("Wniosek zostanie wysłany do zatwierdzenia.\n\n")
	sb.WriteString("Podaj swoją nazwę użytkownika Telegram (np. @twojnick):")

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	b.send(msg.Chat.ID, sb.String(), keyboard)
	sess.state = stateAccountUsername
}

func (b *CustomerBot) handleAccountUsername(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnCancel {
		b.start(msg)
		return
	}

	if !strings.HasPrefix(msg.Text, "@") {
		b.send(msg.Chat.ID, "Nazwa użytkownika musi zaczynać się od @\nSpróbuj ponownie:", nil)
		return
	}

	sess.accountUsername = msg.Text
	b.send(msg.Chat.ID, "Teraz podaj hasło (max 8 znaków):", nil)
	sess.state = stateAccountPassword
}

func (b *CustomerBot) handleAccountPassword(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnCancel {
		b.start(msg)
		return
	}

	if len([]rune(msg.Text)) > 8 {
		b.send(msg.Chat.ID, "Hasło może mieć maksymalnie 8 znaków.\nPodaj hasło ponownie:", nil)
		return
	}

	pending, err := b.store.CreatePendingAccount(msg.From.ID, sess.accountUsername, msg.Text)
	if err != nil {
		log.Printf("bot klienta: create pending account: %v", err)
		b.send(msg.Chat.ID, "❌ Nie udało się wysłać wniosku. Spróbuj ponownie.", nil)
		return
	}

	var admin strings.Builder
	fmt.Fprintf(&admin, "🆕 WNIOSEK O KONTO #%d\n\n", pending.ID)
	fmt.Fprintf(&admin, "Telegram ID: %d\n", msg.From.ID)
	fmt.Fprintf(&admin, "Nazwa: %s\n", msg.From.FirstName)
	fmt.Fprintf(&admin, "Username: %s\n", pending.Username)
	fmt.Fprintf(&admin, "Hasło: %s\n", pending.Password)

	notification := tgbotapi.NewMessage(b.adminID, admin.String())
	notification.ReplyMarkup = approveRejectKeyboard(pending.ID)
	if err := notify(b.api, notification); err != nil {
		log.Printf("bot klienta: %v", err)
	}

	b.send(msg.Chat.ID, "✅ Wniosek o utworzenie konta został wysłany!\n\nPoczekaj na zatwierdzenie przez administratora.", nil)
	b.start(msg)
}

// approveRejectKeyboard tags the inline controls with the pending request id
// so the admin callback can resolve it later.
func approveRejectKeyboard(requestID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Zatwierdź", fmt.Sprintf("approve_%d", requestID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Odrzuć", fmt.Sprintf("reject_%d", requestID)),
		),
	)
}

func (b *CustomerBot) showHelp(msg *tgbotapi.Message, sess *customerSession) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHelpBulk)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHelpComplaint)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	b.send(msg.Chat.ID, "❓ POMOC\n\nW czym mogę pomóc?", keyboard)
	sess.state = stateHelpType
}

func (b *CustomerBot) handleHelpType(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnBack {
		b.start(msg)
		return
	}

	cancelKeyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)

	switch {
	case strings.Contains(msg.Text, "większej ilości"):
		b.send(msg.Chat.ID, "📦 ZAKUP WIĘKSZEJ ILOŚCI\n\nJaką kwotę szacujesz na zakup? (wpisz kwotę w zł)", cancelKeyboard)
		sess.state = stateHelpBulkAmount
	case strings.Contains(msg.Text, "Reklamacja"):
		b.send(msg.Chat.ID, "⚠️ REKLAMACJA\n\nOpisz problem, z którym się spotkałeś:", cancelKeyboard)
		sess.state = stateHelpComplaint
	}
}

func (b *CustomerBot) handleBulkAmount(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnCancel {
		b.start(msg)
		return
	}

	message := fmt.Sprintf("Szacowana kwota: %s zł", msg.Text)
	if _, err := b.store.CreateHelpRequest(msg.From.ID, displayName(msg.From), model.HelpTypeBulk, message); err != nil {
		log.Printf("bot klienta: create help request: %v", err)
	}

	var admin strings.Builder
	admin.WriteString("📦 ZAPYTANIE O WIĘKSZĄ ILOŚĆ\n\n")
	fmt.Fprintf(&admin, "Klient: %s\n", mentionName(msg.From))
	fmt.Fprintf(&admin, "Telegram ID: %d\n", msg.From.ID)
	fmt.Fprintf(&admin, "Szacowana kwota: %s zł\n", msg.Text)
	if err := notify(b.api, tgbotapi.NewMessage(b.adminID, admin.String())); err != nil {
		log.Printf("bot klienta: %v", err)
	}

	b.send(msg.Chat.ID, "✅ Zapytanie zostało wysłane!\n\nSkontaktujemy się z Tobą wkrótce.", nil)
	b.start(msg)
}

func (b *CustomerBot) handleComplaint(msg *tgbotapi.Message, sess *customerSession) {
	if msg.Text == btnCancel {
		b.start(msg)
		return
	}

	if _, err := b.store.CreateHelpRequest(msg.From.ID, displayName(msg.From), model.HelpTypeComplaint, msg.Text); err != nil {
		log.Printf("bot klienta: create help request: %v", err)
	}

	var admin strings.Builder
	admin.WriteString("⚠️ REKLAMACJA\n\n")
	fmt.Fprintf(&admin, "Klient: %s\n", mentionName(msg.From))
	fmt.Fprintf(&admin, "Telegram ID: %d\n", msg.From.ID)
	fmt.Fprintf(&admin, "Treść:\n%s\n", msg.Text)
	if err := notify(b.api, tgbotapi.NewMessage(b.adminID, admin.String())); err != nil {
		log.Printf("bot klienta: %v", err)
	}

	b.send(msg.Chat.ID, "✅ Reklamacja została zgłoszona!\n\nPrzepraszamy za niedogodności. Skontaktujemy się wkrótce.", nil)
	b.start(msg)
}

func (b *CustomerBot) session(chatID int64) *customerSession {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessions[chatID]
}

func (b *CustomerBot) resetSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}

func (b *CustomerBot) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("bot klienta: send do %d: %v", chatID, err)
	}
}
