package notify

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/tg"
)

// FanOut sends one message per recipient, each in its own goroutine, and returns
// how many were delivered. A failed recipient is logged and never stops the rest.
func FanOut(
	ctx context.Context,
	sender tg.Sender,
	logger *zap.Logger,
	kind string,
	recipients []int64,
	build func(chatID int64) tgbotapi.Chattable,
) int {
	batch := uuid.NewString()
	log := logger.With(zap.String("batch", batch), zap.String("kind", kind))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)

	for _, chatID := range recipients {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				log.Warn("fan-out cancelled", zap.Int64("chat_id", chatID), zap.Error(err))
				return
			}

			if _, err := sender.Send(build(chatID)); err != nil {
				log.Error("cannot deliver message", zap.Int64("chat_id", chatID), zap.Error(err))
				return
			}

			mu.Lock()
			delivered++
			mu.Unlock()
		}(chatID)
	}

	wg.Wait()

	metrics.AddDeliveries(kind, delivered, len(recipients))
	log.Info("fan-out finished", zap.Int("delivered", delivered), zap.Int("total", len(recipients)))

	return delivered
}
