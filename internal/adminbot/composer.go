package adminbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/notify"
)

func (b *BotService) startComposer(ctx context.Context, chatID, userID int64) {
	b.saveState(ctx, userID, AdminState{Step: StepSelectTarget})
	b.send(chatID, "Выберите тип рассылки:", TargetKeyboard())
}

func (b *BotService) cancelComposer(ctx context.Context, chatID, userID int64) {
	b.clearState(ctx, userID)
	b.send(chatID, "Рассылка отменена.", AdminMainMenu(b.texts))
}

func (b *BotService) handleComposerCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	state, ok, err := b.states.Get(ctx, userID)
	if err != nil {
		b.logger.Error("cannot load admin session", zap.Int64("user_id", userID), zap.Error(err))
	}

	if query.Data == CallbackCancel {
		b.answer(query.ID, "")
		b.clearState(ctx, userID)
		b.edit(query, "Рассылка отменена.", nil)
		b.handleMainMenu(query.From.ID)
		return
	}

	if !ok {
		b.answer(query.ID, "Действие устарело")
		return
	}

	cancelKB := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(inlineButton(cancelLabel, CallbackCancel)),
	)

	switch {
	case state.Step == StepSelectTarget && query.Data == CallbackAll:
		b.answer(query.ID, "")
		state.Draft.Target = TargetAll
		state.Step = StepEnterText
		b.saveState(ctx, userID, state)
		b.edit(query, "Введите текст сообщения:", &cancelKB)

	case state.Step == StepSelectTarget && query.Data == CallbackOne:
		b.answer(query.ID, "")
		state.Draft.Target = TargetOne
		state.Step = StepEnterUserID
		b.saveState(ctx, userID, state)
		b.edit(query, "Введите ID пользователя для отправки:", &cancelKB)

	case state.Step == StepAskButton && query.Data == CallbackButtonYes:
		b.answer(query.ID, "")
		state.Step = StepEnterButtonText
		b.saveState(ctx, userID, state)
		b.edit(query, "Введите текст кнопки:", &cancelKB)

	case state.Step == StepAskButton && query.Data == CallbackButtonNo:
		b.answer(query.ID, "")
		b.edit(query, "Отправляю без кнопки.", nil)
		b.deliver(ctx, query.From.ID, userID, state.Draft)

	default:
		b.answer(query.ID, "Действие устарело")
	}
}

func (b *BotService) handleComposerStep(ctx context.Context, message *tgbotapi.Message, state AdminState) {
	chatID := message.Chat.ID
	userID := message.From.ID
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case StepSelectTarget, StepAskButton:
		b.send(chatID, "Выберите вариант кнопкой под сообщением или нажмите «Отмена».", nil)

	case StepEnterUserID:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			b.send(chatID, "Неверный ID. Введите числовой ID пользователя:", nil)
			return
		}

		state.Draft.UserID = id
		state.Step = StepEnterText
		b.saveState(ctx, userID, state)
		b.send(chatID, "Введите текст сообщения:", CancelMenu())

	case StepEnterText:
		if text == "" {
			b.send(chatID, "Введите текст сообщения:", CancelMenu())
			return
		}

		state.Draft.Text = message.Text
		state.Step = StepAskButton
		b.saveState(ctx, userID, state)
		b.send(chatID, "Добавить кнопку со ссылкой?", ButtonChoiceKeyboard())

	case StepEnterButtonText:
		if text == "" {
			b.send(chatID, "Введите текст кнопки:", CancelMenu())
			return
		}

		state.Draft.Button = &notify.Button{Text: text}
		state.Step = StepEnterButtonURL
		b.saveState(ctx, userID, state)
		b.send(chatID, "Введите ссылку для кнопки:", CancelMenu())

	case StepEnterButtonURL:
		if text == "" || state.Draft.Button == nil {
			b.send(chatID, "Введите ссылку для кнопки:", CancelMenu())
			return
		}

		state.Draft.Button.URL = NormalizeURL(text)
		b.deliver(ctx, chatID, userID, state.Draft)

	default:
		b.logger.Warn("unknown composer step", zap.String("step", string(state.Step)))
		b.clearState(ctx, userID)
		b.handleMainMenu(chatID)
	}
}

// deliver sends the draft through the customer bot and reports the result to the admin.
func (b *BotService) deliver(ctx context.Context, chatID, adminID int64, draft Draft) {
	b.clearState(ctx, adminID)

	var recipients []int64

	switch draft.Target {
	case TargetOne:
		recipients = []int64{draft.UserID}
	default:
		ids, err := b.registry.ListAll(ctx)
		if err != nil {
			b.logger.Error("cannot list users for mailing", zap.Error(err))
			b.send(chatID, "Не удалось получить список пользователей.", AdminMainMenu(b.texts))
			return
		}
		recipients = ids
	}

	delivered := b.mailer.Send(ctx, recipients, draft.Text, draft.Button)

	b.logger.Info("mailing finished",
		zap.Int64("admin_id", adminID),
		zap.String("target", string(draft.Target)),
		zap.Int("delivered", delivered),
		zap.Int("total", len(recipients)),
	)

	b.send(chatID, fmt.Sprintf("Рассылка завершена: доставлено %d из %d.", delivered, len(recipients)), AdminMainMenu(b.texts))
}
