package adminbot

import (
	"context"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/notify"
	"github.com/gratefultolord/realtor_bot/internal/session"
	"github.com/gratefultolord/realtor_bot/internal/sheets"
	"github.com/gratefultolord/realtor_bot/internal/status"
	"github.com/gratefultolord/realtor_bot/internal/texts"
	"github.com/gratefultolord/realtor_bot/internal/tg"
)

const botName = "admin"

type Registry interface {
	ListAll(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

type Mailer interface {
	Send(ctx context.Context, recipients []int64, text string, button *notify.Button) int
}

type BotService struct {
	sender   tg.Sender
	texts    *texts.Catalog
	admins   map[int64]bool
	adminIDs []int64
	registry Registry
	mailer   Mailer
	notifier notify.Broadcaster
	status   status.Switch
	requests sheets.Reader
	states   session.Store[AdminState]
	logger   *zap.Logger
}

func New(
	sender tg.Sender,
	catalog *texts.Catalog,
	adminIDs []int64,
	registry Registry,
	mailer Mailer,
	notifier notify.Broadcaster,
	botStatus status.Switch,
	requests sheets.Reader,
	states session.Store[AdminState],
	logger *zap.Logger,
) *BotService {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	return &BotService{
		sender:   sender,
		texts:    catalog,
		admins:   admins,
		adminIDs: adminIDs,
		registry: registry,
		mailer:   mailer,
		notifier: notifier,
		status:   botStatus,
		requests: requests,
		states:   states,
		logger:   logger,
	}
}

// AnnounceStart tells every admin the panel is up.
func (b *BotService) AnnounceStart(ctx context.Context) {
	b.notifier.Broadcast(ctx, b.texts.Get("admin_menu", "started"))
}

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

	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		metrics.IncUpdate(botName, metrics.OutcomeHandled)
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		metrics.IncUpdate(botName, metrics.OutcomeHandled)
		b.handleMessage(ctx, update.Message)
	}
}

func (b *BotService) isAdmin(userID int64) bool {
	return b.admins[userID]
}

func (b *BotService) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID
	text := message.Text

	if !b.isAdmin(userID) {
		b.logger.Warn("admin panel access denied", zap.Int64("user_id", userID))
		b.send(chatID, b.texts.Get("admin_menu", "no_access"), nil)
		return
	}

	if message.IsCommand() && message.Command() == "start" {
		b.clearState(ctx, userID)
		b.handleMainMenu(chatID)
		return
	}

	state, ok, err := b.states.Get(ctx, userID)
	if err != nil {
		b.logger.Error("cannot load admin session", zap.Int64("user_id", userID), zap.Error(err))
		ok = false
	}

	if ok {
		if text == cancelLabel {
			b.cancelComposer(ctx, chatID, userID)
			return
		}

		b.handleComposerStep(ctx, message, state)
		return
	}

	switch text {
	case b.texts.Get("admin_menu", "control"):
		b.handleControl(chatID)
	case b.texts.Get("admin_menu", "messaging"):
		b.startComposer(ctx, chatID, userID)
	case b.texts.Get("admin_menu", "stats"):
		b.handleStats(ctx, chatID)
	default:
		b.handleMainMenu(chatID)
	}
}

func (b *BotService) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	if !b.isAdmin(userID) {
		b.answer(query.ID, b.texts.Get("admin_menu", "no_access"))
		return
	}

	if query.Data == CallbackToggle {
		b.handleToggle(query)
		return
	}

	b.handleComposerCallback(ctx, query)
}

func (b *BotService) handleMainMenu(chatID int64) {
	b.send(chatID, b.texts.Get("admin_menu", "welcome"), AdminMainMenu(b.texts))
}

func (b *BotService) handleControl(chatID int64) {
	active := b.status.IsActive()
	b.send(chatID, "Текущий статус бота: "+StatusLabel(active), ControlKeyboard(active))
}

func (b *BotService) handleToggle(query *tgbotapi.CallbackQuery) {
	active, err := b.status.Toggle()
	if err != nil {
		b.logger.Error("cannot switch bot status", zap.Error(err))
		b.answer(query.ID, "Не удалось изменить статус бота")
		return
	}

	b.logger.Info("bot status switched", zap.Int64("admin_id", query.From.ID), zap.Bool("active", active))

	if active {
		b.answer(query.ID, "Бот включен")
	} else {
		b.answer(query.ID, "Бот выключен")
	}

	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		query.Message.Chat.ID,
		query.Message.MessageID,
		"Текущий статус бота: "+StatusLabel(active),
		ControlKeyboard(active),
	)
	if _, err := b.sender.Send(edit); err != nil {
		b.logger.Error("cannot edit status message", zap.Error(err))
	}
}

func (b *BotService) handleStats(ctx context.Context, chatID int64) {
	users := "ошибка"
	if n, err := b.registry.Count(ctx); err != nil {
		b.logger.Error("cannot count users", zap.Error(err))
	} else {
		users = fmt.Sprint(n)
	}

	text := fmt.Sprintf("Статистика:\nПользователей: %s", users)

	for _, t := range []struct{ table, label string }{
		{sheets.SearchTable, "Заявки на подбор"},
		{sheets.SellTable, "Заявки на продажу"},
		{sheets.ExcursionTable, "Заявки на экскурсию"},
	} {
		text += fmt.Sprintf("\n%s: %s", t.label, b.countRequests(ctx, t.table))
	}

	b.send(chatID, text, AdminMainMenu(b.texts))
}

func (b *BotService) countRequests(ctx context.Context, table string) string {
	rows, err := b.requests.ReadAll(ctx, table)
	if err != nil {
		b.logger.Error("cannot read requests", zap.String("table", table), zap.Error(err))
		return "ошибка"
	}

	if len(rows) == 0 {
		return "0"
	}

	return fmt.Sprint(len(rows) - 1)
}

func (b *BotService) saveState(ctx context.Context, userID int64, state AdminState) {
	if err := b.states.Set(ctx, userID, state); err != nil {
		b.logger.Error("cannot save admin session", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *BotService) clearState(ctx context.Context, userID int64) {
	if err := b.states.Delete(ctx, userID); err != nil {
		b.logger.Error("cannot clear admin session", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *BotService) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("cannot send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *BotService) edit(query *tgbotapi.CallbackQuery, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if query.Message == nil || query.Message.Chat == nil {
		if markup == nil {
			b.send(query.From.ID, text, nil)
		} else {
			b.send(query.From.ID, text, *markup)
		}
		return
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ReplyMarkup = markup

	if _, err := b.sender.Send(edit); err != nil {
		b.logger.Error("cannot edit message", zap.Error(err))
	}
}

func (b *BotService) answer(queryID, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.logger.Error("cannot answer callback", zap.Error(err))
	}
}
