package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/realtor_bot/internal/texts"
)

var (
	roomOptions      = [][]string{{"1", "2", "3"}, {"4+"}}
	districtOptions  = [][]string{{"Центр", "Север", "Юг"}, {"Восток", "Запад"}}
	budgetOptions    = [][]string{{"До 5 млн", "5-10 млн"}, {"10-20 млн", "20+ млн"}}
	conditionOptions = [][]string{{"Под ремонт", "С ремонтом"}}
)

func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

func mainMenuKeyboard(c *texts.Catalog) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(c.Get("main_menu", "search_property"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(c.Get("main_menu", "sell_property"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(c.Get("main_menu", "excursion"))),
	)
	kb.ResizeKeyboard = true

	return kb
}

func propertyTypeKeyboard(c *texts.Catalog) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(c.Get("main_menu", "new_build")),
			tgbotapi.NewKeyboardButton(c.Get("main_menu", "secondary")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(c.Get("main_menu", "historic")),
			tgbotapi.NewKeyboardButton(c.Get("main_menu", "back")),
		),
	)
	kb.ResizeKeyboard = true

	return kb
}

// optionsKeyboard lays out the options and puts the exit label after the last one.
func optionsKeyboard(options [][]string, exit string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for i, line := range options {
		row := make([]tgbotapi.KeyboardButton, 0, len(line)+1)
		for _, label := range line {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}

		if i == len(options)-1 {
			row = append(row, tgbotapi.NewKeyboardButton(exit))
		}

		rows = append(rows, row)
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true

	return kb
}

func phoneKeyboard(c *texts.Catalog) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(c.Get("main_menu", "share_contact")),
			tgbotapi.NewKeyboardButton(c.Get("main_menu", "decline")),
			tgbotapi.NewKeyboardButton(c.Get("main_menu", "back")),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true

	return kb
}

// stepKeyboard is the keyboard shown while the user is at the given search step.
func stepKeyboard(c *texts.Catalog, step Step) tgbotapi.ReplyKeyboardMarkup {
	switch step {
	case StepPropertyType:
		return propertyTypeKeyboard(c)
	case StepRooms:
		return optionsKeyboard(roomOptions, c.Get("main_menu", "cancel"))
	case StepDistrict:
		return optionsKeyboard(districtOptions, c.Get("main_menu", "back"))
	case StepBudget:
		return optionsKeyboard(budgetOptions, c.Get("main_menu", "cancel"))
	case StepCondition:
		return optionsKeyboard(conditionOptions, c.Get("main_menu", "back"))
	default:
		return phoneKeyboard(c)
	}
}
