package adminbot

import (
	"strings"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/realtor_bot/internal/texts"
)

const cancelLabel = "Отмена"

func AdminMainMenu(c *texts.Catalog) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(c.Get("admin_menu", "control")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(c.Get("admin_menu", "messaging")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(c.Get("admin_menu", "stats")),
		),
	)
	kb.ResizeKeyboard = true

	return kb
}

func CancelMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(cancelLabel),
		),
	)
}

func inlineButton(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.InlineKeyboardButton{
		Text:         text,
		CallbackData: pointer.ToString(data),
	}
}

func ControlKeyboard(active bool) tgbotapi.InlineKeyboardMarkup {
	label := "Включить"
	if active {
		label = "Переключить"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(inlineButton(label, CallbackToggle)),
	)
}

func TargetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			inlineButton("Массово", CallbackAll),
			inlineButton("Избирательно", CallbackOne),
		),
		tgbotapi.NewInlineKeyboardRow(inlineButton(cancelLabel, CallbackCancel)),
	)
}

func ButtonChoiceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			inlineButton("Да", CallbackButtonYes),
			inlineButton("Нет", CallbackButtonNo),
		),
		tgbotapi.NewInlineKeyboardRow(inlineButton(cancelLabel, CallbackCancel)),
	)
}

func StatusLabel(active bool) string {
	if active {
		return "Включен"
	}

	return "Выключен"
}

// NormalizeURL prepends https:// unless the link already has an http, https or tg scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	lower := strings.ToLower(raw)
	for _, scheme := range []string{"http://", "https://", "tg://"} {
		if strings.HasPrefix(lower, scheme) {
			return raw
		}
	}

	return "https://" + raw
}
