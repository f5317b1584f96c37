package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shop_bots/internal/store"
	shopredis "shop_bots/pkg/redis"
)

// maxOrderRows caps the admin order listing; the remainder is summarized as
// an overflow count.
const maxOrderRows = 20

// AdminBot drives account approval, listings, statistics and special-offer
// creation. Only adminID may use it.
type AdminBot struct {
	api     Sender
	store   *store.Store
	adminID int64
	limiter *shopredis.Limiter

	mu       sync.RWMutex
	sessions map[int64]*adminSession
}

func NewAdminBot(api Sender, st *store.Store, adminID int64, limiter *shopredis.Limiter) *AdminBot {
	return &AdminBot{
		api:      api,
		store:    st,
		adminID:  adminID,
		limiter:  limiter,
		sessions: make(map[int64]*adminSession),
	}
}

// Run consumes the update stream until ctx is cancelled or the channel
// closes. Panics stop this flow only.
func (b *AdminBot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot admina: przerwany: %v", r)
		}
	}()

	log.Printf("bot admina uruchomiony")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
				continue
			}
			if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *AdminBot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Single-admin gate: everyone else is turned away immediately.
	if msg.From.ID != b.adminID {
		b.send(chatID, "Nie masz uprawnień do tego bota.", nil)
		return
	}

	if !b.limiter.Allow(context.Background(), shopredis.RateLimitKey("admin", msg.From.ID)) {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "cancel":
			b.panel(chatID)
		}
		return
	}

	sess := b.session(chatID)
	if sess == nil {
		return
	}

	switch sess.state {
	case stateChoosingAction:
		b.handleAction(msg, sess)
	case stateOfferUserID:
		b.handleOfferUserID(msg, sess)
	case stateOfferProduct:
		b.handleOfferProduct(msg, sess)
	case stateOfferDescription:
		b.handleOfferDescription(msg, sess)
	case stateOfferPrice:
		b.handleOfferPrice(msg, sess)
	}
}

// panel shows the action menu and drops any offer draft.
func (b *AdminBot) panel(chatID int64) {
	b.mu.Lock()
	b.sessions[chatID] = &adminSession{state: stateChoosingAction}
	b.mu.Unlock()

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPendingAccounts),
			tgbotapi.NewKeyboardButton(btnAllOrders),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAllUsers),
			tgbotapi.NewKeyboardButton(btnAddOffer),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnStatistics)),
	)
	b.send(chatID, "🔧 PANEL ADMINA\n\nWybierz akcję:", keyboard)
}

func (b *AdminBot) handleAction(msg *tgbotapi.Message, sess *adminSession) {
	switch msg.Text {
	case btnPendingAccounts:
		b.showPendingAccounts(msg.Chat.ID)
	case btnAllOrders:
		b.showAllOrders(msg.Chat.ID)
	case btnAllUsers:
		b.showAllUsers(msg.Chat.ID)
	case btnAddOffer:
		b.send(msg.Chat.ID, "🎁 NOWA OFERTA SPECJALNA\n\nPodaj Telegram ID użytkownika:", nil)
		sess.state = stateOfferUserID
	case btnStatistics:
		b.showStatistics(msg.Chat.ID)
	}
}

// showPendingAccounts renders every open request as its own message with
// inline approve/reject controls; only the first carries the header.
func (b *AdminBot) showPendingAccounts(chatID int64) {
	pending, err := b.store.PendingAccounts()
	if err != nil {
		log.Printf("bot admina: pending accounts: %v", err)
		return
	}
	if len(pending) == 0 {
		b.send(chatID, "Brak oczekujących wniosków o konto.", nil)
		return
	}

	header := fmt.Sprintf("📋 OCZEKUJĄCE WNIOSKI (%d):\n\n", len(pending))
	for _, acc := range pending {
		var sb strings.Builder
		sb.WriteString(header)
		header = ""
		fmt.Fprintf(&sb, "#%d\n", acc.ID)
		fmt.Fprintf(&sb, "Telegram ID: %d\n", acc.TelegramID)
		fmt.Fprintf(&sb, "Username: %s\n", acc.Username)
		fmt.Fprintf(&sb, "Hasło: %s\n", acc.Password)
		fmt.Fprintf(&sb, "Data: %s\n", fmtTime(acc.CreatedAt))

		b.send(chatID, sb.String(), approveRejectKeyboard(acc.ID))
	}
}

func (b *AdminBot) showAllOrders(chatID int64) {
	orders, err := b.store.AllOrders()
	if err != nil {
		log.Printf("bot admina: all orders: %v", err)
		return
	}
	if len(orders) == 0 {
		b.send(chatID, "Brak zamówień.", nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 WSZYSTKIE ZAMÓWIENIA (%d):\n\n", len(orders))

	shown := orders
	if len(shown) > maxOrderRows {
		shown = shown[:maxOrderRows]
	}
	for _, o := range shown {
		fmt.Fprintf(&sb, "#%d (%s) - %s\n", o.ID, o.OrderNo, o.Username)
		fmt.Fprintf(&sb, "Produkt: %s (%sg)\n", o.ProductName, fmtAmount(o.Quantity))
		fmt.Fprintf(&sb, "Kwota: %s zł\n", fmtAmount(o.TotalPrice))
		fmt.Fprintf(&sb, "Płatność: %s\n", o.PaymentMethod)
		fmt.Fprintf(&sb, "Data: %s\n\n", fmtTime(o.CreatedAt))
	}
	if len(orders) > maxOrderRows {
		fmt.Fprintf(&sb, "... i %d więcej", len(orders)-maxOrderRows)
	}

	b.send(chatID, sb.String(), nil)
}

func (b *AdminBot) showAllUsers(chatID int64) {
	users, err := b.store.AllUsers()
	if err != nil {
		log.Printf("bot admina: all users: %v", err)
		return
	}
	if len(users) == 0 {
		b.send(chatID, "Brak zarejestrowanych użytkowników.", nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 WSZYSCY UŻYTKOWNICY (%d):\n\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&sb, "ID: %d\n", u.TelegramID)
		fmt.Fprintf(&sb, "Username: %s\n", u.Username)
		fmt.Fprintf(&sb, "Data: %s\n\n", fmtTime(u.CreatedAt))
	}

	b.send(chatID, sb.String(), nil)
}

func (b *AdminBot) showStatistics(chatID int64) {
	stats, err := b.store.Stats()
	if err != nil {
		log.Printf("bot admina: stats: %v", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 STATYSTYKI\n\n")
	fmt.Fprintf(&sb, "👥 Użytkownicy: %d\n", stats.Users)
	fmt.Fprintf(&sb, "📦 Zamówienia: %d\n", stats.Orders)
	fmt.Fprintf(&sb, "💰 Całkowity przychód: %s zł\n", fmtAmount(stats.Revenue))
	fmt.Fprintf(&sb, "⏳ Oczekujące konta: %d\n", stats.PendingAccounts)

	b.send(chatID, sb.String(), nil)
}

func (b *AdminBot) handleOfferUserID(msg *tgbotapi.Message, sess *adminSession) {
	userID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		b.send(msg.Chat.ID, "Podaj prawidłowy numer ID:", nil)
		return
	}

	user, err := b.store.UserByID(userID)
	if err != nil {
		log.Printf("bot admina: user lookup: %v", err)
	}
	if user == nil {
		b.send(msg.Chat.ID, "Użytkownik o tym ID nie istnieje lub nie ma zatwierdzonego konta.\nPodaj prawidłowe ID:", nil)
		return
	}

	sess.offerUserID = user.TelegramID
	sess.offerUsername = user.Username
	b.send(msg.Chat.ID, fmt.Sprintf("Użytkownik: %s\n\nPodaj nazwę produktu (np. 'Diament Premium'):", user.Username), nil)
	sess.state = stateOfferProduct
}

func (b *AdminBot) handleOfferProduct(msg *tgbotapi.Message, sess *adminSession) {
	sess.offerProduct = msg.Text
	b.send(msg.Chat.ID, "Podaj opis oferty:", nil)
	sess.state = stateOfferDescription
}

func (b *AdminBot) handleOfferDescription(msg *tgbotapi.Message, sess *adminSession) {
	sess.offerDesc = msg.Text
	b.send(msg.Chat.ID, "Podaj cenę (zł/g):", nil)
	sess.state = stateOfferPrice
}

func (b *AdminBot) handleOfferPrice(msg *tgbotapi.Message, sess *adminSession) {
	price, err := strconv.ParseFloat(strings.TrimSpace(msg.Text), 64)
	if err != nil {
		b.send(msg.Chat.ID, "Podaj prawidłową cenę:", nil)
		return
	}

	offer, err := b.store.CreateSpecialOffer(sess.offerUserID, sess.offerProduct, sess.offerDesc, price)
	if err != nil {
		log.Printf("bot admina: create offer: %v", err)
		b.send(msg.Chat.ID, "❌ Nie udało się utworzyć oferty. Spróbuj ponownie.", nil)
		return
	}

	var confirm strings.Builder
	confirm.WriteString("✅ Oferta specjalna utworzona!\n\n")
	fmt.Fprintf(&confirm, "ID oferty: #%d\n", offer.ID)
	fmt.Fprintf(&confirm, "Dla: %s\n", sess.offerUsername)
	fmt.Fprintf(&confirm, "Produkt: %s\n", offer.ProductName)
	fmt.Fprintf(&confirm, "Cena: %s zł/g", fmtAmount(offer.Price))
	b.send(msg.Chat.ID, confirm.String(), nil)

	var note strings.Builder
	note.WriteString("🎁 NOWA OFERTA SPECJALNA DLA CIEBIE!\n\n")
	fmt.Fprintf(&note, "Produkt: %s\n", offer.ProductName)
	fmt.Fprintf(&note, "%s\n", offer.Description)
	fmt.Fprintf(&note, "Cena: %s zł/g\n\n", fmtAmount(offer.Price))
	note.WriteString("Sprawdź sekcję ZAKUP aby zobaczyć!")
	if err := notify(b.api, tgbotapi.NewMessage(sess.offerUserID, note.String())); err != nil {
		log.Printf("bot admina: %v", err)
	}

	b.panel(msg.Chat.ID)
}

// handleCallback services the approve/reject buttons. It is independent of
// the conversation state machine: buttons can arrive at any time, including
// for requests that have already been processed.
func (b *AdminBot) handleCallback(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("bot admina: answer callback: %v", err)
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	switch {
	case strings.HasPrefix(query.Data, "approve_"):
		requestID, err := parseCallbackID(query.Data, "approve_")
		if err != nil {
			log.Printf("bot admina: callback %q: %v", query.Data, err)
			return
		}

		user, ok, err := b.store.ApproveAccount(requestID)
		if err != nil {
			log.Printf("bot admina: approve %d: %v", requestID, err)
			return
		}
		if !ok {
			// Already processed; mark the message instead of failing.
			b.edit(chatID, messageID, query.Message.Text+"\n\n❌ BŁĄD")
			return
		}

		b.edit(chatID, messageID, query.Message.Text+"\n\n✅ ZATWIERDZONO")

		note := "✅ Twoje konto zostało zatwierdzone!\n\nMożesz teraz korzystać ze wszystkich funkcji."
		if err := notify(b.api, tgbotapi.NewMessage(user.TelegramID, note)); err != nil {
			log.Printf("bot admina: %v", err)
		}

	case strings.HasPrefix(query.Data, "reject_"):
		requestID, err := parseCallbackID(query.Data, "reject_")
		if err != nil {
			log.Printf("bot admina: callback %q: %v", query.Data, err)
			return
		}

		if err := b.store.RejectAccount(requestID); err != nil {
			log.Printf("bot admina: reject %d: %v", requestID, err)
			return
		}
		b.edit(chatID, messageID, query.Message.Text+"\n\n❌ ODRZUCONO")
	}
}

func parseCallbackID(data, prefix string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (b *AdminBot) session(chatID int64) *adminSession {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessions[chatID]
}

func (b *AdminBot) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("bot admina: send do %d: %v", chatID, err)
	}
}

func (b *AdminBot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		log.Printf("bot admina: edit %d/%d: %v", chatID, messageID, err)
	}
}
