package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type stubSender struct {
	sent   []tgbotapi.MessageConfig
	failOn int64
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("неожиданный тип сообщения")
	}
	if msg.ChatID == s.failOn {
		return tgbotapi.Message{}, errors.New("bot was blocked")
	}
	s.sent = append(s.sent, msg)
	return tgbotapi.Message{}, nil
}

func TestNotifierSendSplitsAndUsesHTML(t *testing.T) {
	bot := &stubSender{}
	n := NewNotifier(bot, []int64{10, 20}, zerolog.Nop())
	text := strings.Repeat("x", 4000) + "\n" + strings.Repeat("y", 200)

	if err := n.Send(context.Background(), text); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(bot.sent) != 4 {
		t.Fatalf("ожидали по 2 сообщения в 2 чата, получили %d", len(bot.sent))
	}
	for _, msg := range bot.sent {
		if msg.ParseMode != tgbotapi.ModeHTML {
			t.Fatalf("ожидали HTML разметку")
		}
	}
	if bot.sent[0].ChatID != 10 || bot.sent[2].ChatID != 20 {
		t.Fatalf("неверный порядок чатов")
	}
}

func TestNotifierContinuesAfterChatError(t *testing.T) {
	bot := &stubSender{failOn: 10}
	n := NewNotifier(bot, []int64{10, 20}, zerolog.Nop())
	err := n.Send(context.Background(), "отчёт")
	if err == nil || !strings.Contains(err.Error(), "chat 10") {
		t.Fatalf("ожидали ошибку первого чата, получили %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].ChatID != 20 {
		t.Fatalf("второй чат должен получить отчёт")
	}
}

func TestNotifierNoRecipients(t *testing.T) {
	n := NewNotifier(&stubSender{}, nil, zerolog.Nop())
	if err := n.Send(context.Background(), "отчёт"); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("ожидали ErrNoRecipients, получили %v", err)
	}
}
