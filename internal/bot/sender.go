package bot

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the slice of the Telegram API the flows use. *tgbotapi.BotAPI
// satisfies it; tests substitute a recording fake.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ErrNotify marks a failed cross-party notification. Deliveries are best
// effort: the caller logs the error and carries on, the store write that
// triggered the notification is already committed and stays committed.
var ErrNotify = errors.New("notification delivery failed")

// notify sends a cross-party message, wrapping any transport failure in
// ErrNotify.
func notify(s Sender, c tgbotapi.Chattable) error {
	if _, err := s.Send(c); err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	return nil
}
