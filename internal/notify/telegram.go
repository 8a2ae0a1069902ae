package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/soradaze/qmatch/internal/models"
)

// Telegram pushes notifications to responders who linked a Telegram
// chat to their profile. Responders without a chat ID are skipped.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{api: api}, nil
}

func (t *Telegram) Push(ctx context.Context, profile *models.ResponderProfile, notification *models.Notification) error {
	if profile == nil || profile.TelegramChatID == nil {
		return nil
	}

	msg := tgbotapi.NewMessage(*profile.TelegramChatID,
		fmt.Sprintf("%s\n%s", notification.Title, notification.Body))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}

	return nil
}
