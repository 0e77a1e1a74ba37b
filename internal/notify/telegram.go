package notify

import (
	"context"
	"fmt"

	"nateiva/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// telegramSender is the slice of the bot API the notifier uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes notifications to a Telegram chat. Sends are rate
// limited and retried with backoff, since the Bot API throttles bursts.
type TelegramNotifier struct {
	sender  telegramSender
	chatID  int64
	limiter *rate.Limiter
	retry   DeliveryRetry
	logger  *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, retry DeliveryRetry, logger *zerolog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info().Str("bot", api.Self.UserName).Msg("telegram notifier connected")

	return &TelegramNotifier{
		sender:  api,
		chatID:  cfg.ChatID,
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRPS), 1),
		retry:   retry,
		logger:  logger,
	}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)

	var lastErr error
	attempts := n.retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if _, lastErr = n.sender.Send(msg); lastErr == nil {
			return nil
		}
		n.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("telegram send failed")
		if attempt < attempts {
			if err := n.retry.wait(ctx, attempt); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", attempts, lastErr)
}
