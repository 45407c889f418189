package tg

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the bots use to talk to Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ Sender = (*tgbotapi.BotAPI)(nil)

const Hidden = "Скрыт"

// ContactHandle is the value stored in the Telegram column of a request row.
func ContactHandle(u *tgbotapi.User) string {
	if u == nil || u.UserName == "" {
		return Hidden
	}

	return u.UserName + ".t.me"
}

// Mention renders the user for admin notifications.
func Mention(u *tgbotapi.User) string {
	if u == nil || u.UserName == "" {
		return Hidden
	}

	return "@" + u.UserName
}
