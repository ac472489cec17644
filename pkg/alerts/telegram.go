package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

// TelegramNotifier posts notifications to a Telegram chat through a bot.
type TelegramNotifier struct {
	bot    *telebot.Bot
	chatID telebot.ChatID
}

// NewTelegramNotifier creates a bot client without contacting the Telegram
// API. apiURL may be empty to use the public endpoint.
func NewTelegramNotifier(token string, chatID int64, apiURL string) (*TelegramNotifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		URL:     apiURL,
		Offline: true,
		Client:  &http.Client{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: telebot.ChatID(chatID)}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send delivers the message. telebot has no context support, so ctx is only
// checked before the request is issued.
func (t *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := msg.Title + "\n" + msg.Text
	if _, err := t.bot.Send(t.chatID, text); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}
