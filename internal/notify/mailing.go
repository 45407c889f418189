package notify

import (
	"context"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/tg"
)

// Button is an optional URL button attached under a mailing.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Mailer sends admin-composed messages to customers through the customer bot.
type Mailer struct {
	sender tg.Sender
	logger *zap.Logger
}

func NewMailer(sender tg.Sender, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, logger: logger}
}

// Send returns the number of recipients the message reached.
func (m *Mailer) Send(ctx context.Context, recipients []int64, text string, button *Button) int {
	return FanOut(ctx, m.sender, m.logger, metrics.DeliveryBroadcast, recipients, func(chatID int64) tgbotapi.Chattable {
		msg := tgbotapi.NewMessage(chatID, text)
		if button != nil {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				[]tgbotapi.InlineKeyboardButton{{
					Text: button.Text,
					URL:  pointer.ToString(button.URL),
				}},
			)
		}
		return msg
	})
}
