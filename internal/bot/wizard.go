package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/sheets"
	"github.com/gratefultolord/realtor_bot/internal/tg"
)

type contactFlow struct {
	table string
	title string
}

var contactFlows = map[Flow]contactFlow{
	FlowSell:      {table: sheets.SellTable, title: "Заявка на продажу"},
	FlowExcursion: {table: sheets.ExcursionTable, title: "Заявка на экскурсию"},
}

func (b *BotService) startSearch(ctx context.Context, message *tgbotapi.Message) {
	b.saveState(ctx, message.From.ID, UserState{Flow: FlowSearch, Step: StepPropertyType})
	b.prompt(message.Chat.ID, StepPropertyType)
}

func (b *BotService) startContactFlow(ctx context.Context, message *tgbotapi.Message, flow Flow) {
	b.saveState(ctx, message.From.ID, UserState{Flow: flow, Step: StepPhone})
	b.prompt(message.Chat.ID, StepPhone)
}

func (b *BotService) prompt(chatID int64, step Step) {
	b.send(chatID, b.texts.Get("responses", string(step)), stepKeyboard(b.texts, step))
}

func (b *BotService) handlePropertyType(ctx context.Context, message *tgbotapi.Message, state UserState) {
	text := NormalizeText(message.Text)

	switch text {
	case b.texts.Get("main_menu", "new_build"),
		b.texts.Get("main_menu", "secondary"),
		b.texts.Get("main_menu", "historic"):
	default:
		b.send(message.Chat.ID, b.texts.Get("responses", "choose_option"), stepKeyboard(b.texts, StepPropertyType))
		return
	}

	state.Form.PropertyType = text
	state.Step = StepRooms
	b.saveState(ctx, message.From.ID, state)
	b.prompt(message.Chat.ID, StepRooms)
}

// handleSearchAnswer accepts any text for rooms, district, budget and condition.
func (b *BotService) handleSearchAnswer(ctx context.Context, message *tgbotapi.Message, state UserState) {
	text := NormalizeText(message.Text)
	if text == "" {
		b.send(message.Chat.ID, b.texts.Get("responses", "enter_text"), stepKeyboard(b.texts, state.Step))
		return
	}

	switch state.Step {
	case StepRooms:
		state.Form.Rooms = text
		state.Step = StepDistrict
	case StepDistrict:
		state.Form.District = text
		state.Step = StepBudget
	case StepBudget:
		state.Form.Budget = text
		if state.Form.PropertyType == b.texts.Get("main_menu", "historic") {
			state.Step = StepCondition
		} else {
			state.Step = StepPhone
		}
	case StepCondition:
		state.Form.Condition = text
		state.Step = StepPhone
	}

	b.saveState(ctx, message.From.ID, state)
	b.prompt(message.Chat.ID, state.Step)
}

func (b *BotService) handlePhone(ctx context.Context, message *tgbotapi.Message, state UserState) {
	var phone string

	switch {
	case message.Contact != nil && message.Contact.PhoneNumber != "":
		phone = message.Contact.PhoneNumber
	case NormalizeText(message.Text) != "":
		phone = Declined
	default:
		b.prompt(message.Chat.ID, StepPhone)
		return
	}

	// Сессия очищается до записи: повторная отправка не должна создать вторую строку.
	b.clearState(ctx, message.From.ID)

	var (
		table  string
		row    []string
		notice string
	)

	handle := tg.ContactHandle(message.From)

	if state.Flow == FlowSearch {
		f := state.Form
		table = sheets.SearchTable
		row = []string{f.PropertyType, f.Rooms, f.District, f.Budget, f.Condition, phone, handle}
		notice = searchNotice(f, phone, message.From)
	} else {
		cf, ok := contactFlows[state.Flow]
		if !ok {
			b.logger.Warn("unknown flow at phone step", zap.String("flow", string(state.Flow)))
			b.sendMainMenu(message.Chat.ID, b.texts.Get("responses", "choose_menu"))
			return
		}
		table = cf.table
		row = []string{phone, handle}
		notice = contactNotice(cf.title, phone, message.From)
	}

	stored := b.sink.Append(ctx, table, row)
	metrics.IncSubmission(table, stored)

	if !stored {
		b.sendMainMenu(message.Chat.ID, b.texts.Get("responses", "error"))
		return
	}

	b.logger.Info("request stored", zap.String("table", table), zap.Int64("user_id", message.From.ID))
	b.notifier.Broadcast(ctx, notice)
	b.sendMainMenu(message.Chat.ID, b.texts.Get("responses", "success"))
}

func searchNotice(f SearchForm, phone string, user *tgbotapi.User) string {
	condition := f.Condition
	if condition == "" {
		condition = "-"
	}

	var sb strings.Builder
	sb.WriteString("<b>Новая заявка от бота</b>\n")
	sb.WriteString("Заявка на подбор:\n")
	fmt.Fprintf(&sb, "Тип: %s\n", html.EscapeString(f.PropertyType))
	fmt.Fprintf(&sb, "Комнаты: %s\n", html.EscapeString(f.Rooms))
	fmt.Fprintf(&sb, "Район: %s\n", html.EscapeString(f.District))
	fmt.Fprintf(&sb, "Бюджет: %s\n", html.EscapeString(f.Budget))
	fmt.Fprintf(&sb, "Состояние: %s\n", html.EscapeString(condition))
	fmt.Fprintf(&sb, "Телефон: %s\n", html.EscapeString(phoneLabel(phone)))
	fmt.Fprintf(&sb, "Telegram: %s", html.EscapeString(tg.Mention(user)))

	return sb.String()
}

func contactNotice(title, phone string, user *tgbotapi.User) string {
	return fmt.Sprintf("<b>Новая заявка от бота</b>\n%s:\nТелефон: %s\nTelegram: %s",
		title,
		html.EscapeString(phoneLabel(phone)),
		html.EscapeString(tg.Mention(user)),
	)
}

func phoneLabel(phone string) string {
	if phone == Declined {
		return "Не указан"
	}

	return phone
}
