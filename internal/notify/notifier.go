package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/tg"
)

// Broadcaster delivers a text to every admin.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string)
}

var _ Broadcaster = (*Notifier)(nil)

// Notifier writes to admins through the admin bot.
type Notifier struct {
	sender tg.Sender
	admins []int64
	logger *zap.Logger
}

func NewNotifier(sender tg.Sender, admins []int64, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		admins: admins,
		logger: logger,
	}
}

// Broadcast sends an HTML message to every admin and waits for all sends to finish.
func (n *Notifier) Broadcast(ctx context.Context, text string) {
	FanOut(ctx, n.sender, n.logger, metrics.DeliveryAdminNotice, n.admins, func(chatID int64) tgbotapi.Chattable {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		return msg
	})
}
