// Package telegram delivers generated coverage reports to a Telegram chat.
package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// Telegram caps messages at 4096 characters; long reports are split.
const maxMessageLen = 4000

// Notifier sends coverage reports to the configured chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates a Telegram notifier.
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat ID is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
		zap.Int64("chat_id", cfg.ChatID),
	)

	return &Notifier{api: bot, chatID: cfg.ChatID}, nil
}

// SendReport delivers a narrative report with a short stats header.
func (n *Notifier) SendReport(record *models.AnalysisRecord, report string) error {
	header := fmt.Sprintf("*%s*\n%s to %s, %d mentions\n\n",
		escapeMarkdown(record.Topic), record.StartDate, record.EndDate, record.TotalMentions)

	return n.sendChunked(header + report)
}

// SendRefreshFailure notifies the chat that a tracked topic could not be
// refreshed.
func (n *Notifier) SendRefreshFailure(topic string, err error) error {
	text := fmt.Sprintf("⚠️ Refresh failed for *%s* at %s\n`%v`",
		escapeMarkdown(topic), time.Now().UTC().Format("15:04:05"), err)

	return n.sendChunked(text)
}

func (n *Notifier) sendChunked(text string) error {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMessageLen {
			chunk = chunk[:maxMessageLen]
			// Break on a line boundary when one is near enough.
			if idx := lastNewline(chunk); idx > maxMessageLen/2 {
				chunk = chunk[:idx]
			}
		}
		text = text[len(chunk):]

		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = "Markdown"

		if _, err := n.api.Send(msg); err != nil {
			logger.Error("failed to send telegram message",
				zap.Int64("chat_id", n.chatID),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func lastNewline(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}

func escapeMarkdown(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '_', '`', '[':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
