package bot

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"shop_bots/internal/store"
)

const testAdminID int64 = 900

// fakeSender records outbound traffic instead of talking to Telegram.
// Chats listed in failChats refuse delivery, for exercising the best-effort
// notification path.
type fakeSender struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	failChats map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{failChats: make(map[int64]bool)}
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if chatID, ok := chatIDOf(c); ok && f.failChats[chatID] {
		return tgbotapi.Message{}, errors.New("telegram: forbidden")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func chatIDOf(c tgbotapi.Chattable) (int64, bool) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID, true
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID, true
	}
	return 0, false
}

func (f *fakeSender) messagesTo(chatID int64) []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if mc, ok := c.(tgbotapi.MessageConfig); ok && mc.ChatID == chatID {
			out = append(out, mc)
		}
	}
	return out
}

func (f *fakeSender) textsTo(chatID int64) []string {
	var out []string
	for _, mc := range f.messagesTo(chatID) {
		out = append(out, mc.Text)
	}
	return out
}

func (f *fakeSender) lastTextTo(t *testing.T, chatID int64) string {
	t.Helper()
	texts := f.textsTo(chatID)
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

func (f *fakeSender) editsTo(chatID int64) []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if ec, ok := c.(tgbotapi.EditMessageTextConfig); ok && ec.ChatID == chatID {
			out = append(out, ec)
		}
	}
	return out
}

func newBotStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "bots.db"))
	require.NoError(t, err)
	return store.New(db)
}

func textMsg(from *tgbotapi.User, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      from,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
}

// cmdMsg builds a command message with the bot_command entity Telegram
// attaches to real commands; Message.IsCommand relies on it.
func cmdMsg(from *tgbotapi.User, chatID int64, cmd string) *tgbotapi.Message {
	m := textMsg(from, chatID, cmd)
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return m
}
