package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// ErrNoRecipients возвращается, если не задан ни один чат для отчётов.
var ErrNoRecipients = errors.New("не заданы чаты для отчётов")

// Sender — часть tgbotapi.BotAPI, отправляющая сообщения.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier рассылает HTML-отчёты в чаты Telegram.
type Notifier struct {
	bot   Sender
	chats []int64
	log   zerolog.Logger
}

var _ domain.Notifier = (*Notifier)(nil)

// NewNotifier создаёт отправителя отчётов.
func NewNotifier(bot Sender, chats []int64, logger zerolog.Logger) *Notifier {
	return &Notifier{bot: bot, chats: chats, log: logger}
}

// Send отправляет текст во все чаты, разбивая его по лимиту Telegram.
// Ошибка одного чата не прерывает рассылку в остальные.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if len(n.chats) == 0 {
		return ErrNoRecipients
	}
	parts := SplitMessage(text)
	var errs []error
	for _, chatID := range n.chats {
		if err := n.sendParts(ctx, chatID, parts); err != nil {
			n.log.Error().Err(err).Int64("chat", chatID).Msg("telegram: не удалось отправить отчёт")
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) sendParts(ctx context.Context, chatID int64, parts []string) error {
	target := strconv.FormatInt(chatID, 10)
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		start := time.Now()
		_, err := n.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram", "send_message", target, start, err)
		if err != nil {
			return err
		}
	}
	return nil
}
