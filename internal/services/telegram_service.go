package services

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tasklist/internal/logger"
)

// Alerter notifies operators. Messages must never contain secrets or codes.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramService struct {
	bot    telegramSender
	chatID int64
}

// NewTelegramService connects to the Bot API. An empty token or chat id
// yields a service whose Alert is a no-op.
func NewTelegramService(botToken string, opsChatID int64) (*TelegramService, error) {
	if botToken == "" || opsChatID == 0 {
		return &TelegramService{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramService{bot: bot, chatID: opsChatID}, nil
}

func (t *TelegramService) Alert(ctx context.Context, text string) error {
	if t == nil || t.bot == nil {
		logger.Debug(ctx, "telegram alert skipped", zap.String("text", text))
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}
