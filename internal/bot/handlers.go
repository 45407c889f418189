package bot

import (
	"context"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/files"
	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/notify"
	"github.com/gratefultolord/realtor_bot/internal/session"
	"github.com/gratefultolord/realtor_bot/internal/sheets"
	"github.com/gratefultolord/realtor_bot/internal/status"
	"github.com/gratefultolord/realtor_bot/internal/texts"
	"github.com/gratefultolord/realtor_bot/internal/tg"
)

const botName = "customer"

type Registry interface {
	Register(ctx context.Context, userID int64) (bool, error)
}

type BotService struct {
	sender   tg.Sender
	texts    *texts.Catalog
	registry Registry
	sink     sheets.Appender
	notifier notify.Broadcaster
	gate     status.Reader
	photos   *files.PhotoService
	states   session.Store[UserState]
	logger   *zap.Logger
}

func New(
	sender tg.Sender,
	catalog *texts.Catalog,
	registry Registry,
	sink sheets.Appender,
	notifier notify.Broadcaster,
	gate status.Reader,
	photos *files.PhotoService,
	states session.Store[UserState],
	logger *zap.Logger,
) *BotService {
	return &BotService{
		sender:   sender,
		texts:    catalog,
		registry: registry,
		sink:     sink,
		notifier: notifier,
		gate:     gate,
		photos:   photos,
		states:   states,
		logger:   logger,
	}
}

// Start handles updates one by one until the channel closes or ctx is done.
func (b *BotService) Start(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncUpdate(botName, metrics.OutcomePanic)
			b.logger.Error("panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	// Статус читается из файла на каждое обновление: админ-бот может переключить его в любой момент.
	if !b.gate.IsActive() {
		metrics.IncUpdate(botName, metrics.OutcomeDropped)
		return
	}

	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	metrics.IncUpdate(botName, metrics.OutcomeHandled)
	b.handleMessage(ctx, message)
}

func (b *BotService) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() && message.Command() == "start" {
		b.handleStart(ctx, message)
		return
	}

	userID := message.From.ID

	state, ok, err := b.states.Get(ctx, userID)
	if err != nil {
		b.logger.Error("cannot load session", zap.Int64("user_id", userID), zap.Error(err))
		ok = false
	}

	if ok && state.Step != "" {
		b.handleStep(ctx, message, state)
		return
	}

	b.handleMenu(ctx, message)
}

func (b *BotService) handleStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	created, err := b.registry.Register(ctx, userID)
	switch {
	case err != nil:
		b.logger.Error("cannot register user", zap.Int64("user_id", userID), zap.Error(err))
	case created:
		metrics.IncUsersRegistered()
		b.logger.Info("user registered", zap.Int64("user_id", userID))
	}

	b.clearState(ctx, userID)

	if err := b.photos.Send(b.sender, chatID, b.texts.Get("welcome", "greeting"), mainMenuKeyboard(b.texts)); err != nil {
		b.logger.Error("cannot send welcome", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *BotService) handleMenu(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := NormalizeText(message.Text)

	switch {
	case text == b.texts.Get("main_menu", "search_property"):
		b.startSearch(ctx, message)
	case text == b.texts.Get("main_menu", "sell_property"):
		b.startContactFlow(ctx, message, FlowSell)
	case text == b.texts.Get("main_menu", "excursion"):
		b.startContactFlow(ctx, message, FlowExcursion)
	case b.isCancel(text):
		b.sendMainMenu(chatID, b.texts.Get("responses", "back_to_menu"))
	default:
		b.sendMainMenu(chatID, b.texts.Get("responses", "choose_menu"))
	}
}

func (b *BotService) handleStep(ctx context.Context, message *tgbotapi.Message, state UserState) {
	if b.isCancel(NormalizeText(message.Text)) {
		b.cancel(ctx, message, state)
		return
	}

	switch state.Step {
	case StepPropertyType:
		b.handlePropertyType(ctx, message, state)
	case StepRooms, StepDistrict, StepBudget, StepCondition:
		b.handleSearchAnswer(ctx, message, state)
	case StepPhone:
		b.handlePhone(ctx, message, state)
	default:
		b.logger.Warn("unknown step, resetting session",
			zap.Int64("user_id", message.From.ID),
			zap.String("step", string(state.Step)),
		)
		b.clearState(ctx, message.From.ID)
		b.sendMainMenu(message.Chat.ID, b.texts.Get("responses", "choose_menu"))
	}
}

func (b *BotService) isCancel(text string) bool {
	return text != "" && (text == b.texts.Get("main_menu", "cancel") || text == b.texts.Get("main_menu", "back"))
}

func (b *BotService) cancel(ctx context.Context, message *tgbotapi.Message, state UserState) {
	b.logger.Info("flow cancelled",
		zap.Int64("user_id", message.From.ID),
		zap.String("flow", string(state.Flow)),
		zap.String("step", string(state.Step)),
	)

	b.clearState(ctx, message.From.ID)
	b.sendMainMenu(message.Chat.ID, b.texts.Get("responses", "back_to_menu"))
}

func (b *BotService) saveState(ctx context.Context, userID int64, state UserState) {
	if err := b.states.Set(ctx, userID, state); err != nil {
		b.logger.Error("cannot save session", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *BotService) clearState(ctx context.Context, userID int64) {
	if err := b.states.Delete(ctx, userID); err != nil {
		b.logger.Error("cannot clear session", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *BotService) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup

	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("cannot send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *BotService) sendMainMenu(chatID int64, text string) {
	b.send(chatID, text, mainMenuKeyboard(b.texts))
}
