package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

// chatRecipient addresses a chat by numeric id or @username.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

// TelegramSender sends notices through a Telegram bot.
type TelegramSender struct {
	bot *telebot.Bot
}

// NewTelegramSender creates an offline bot client: no getMe call is made at
// startup, so a bad token surfaces on the first send. apiURL may be empty.
func NewTelegramSender(token, apiURL string, timeout time.Duration) (*TelegramSender, error) {
	if token == "" {
		return &TelegramSender{}, nil
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		URL:     apiURL,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Configured() bool { return s.bot != nil }

// Send delivers text as a plain message. The bot client does not take a
// context; the HTTP client timeout bounds the call instead.
func (s *TelegramSender) Send(ctx context.Context, recipient, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.bot.Send(chatRecipient(recipient), text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
