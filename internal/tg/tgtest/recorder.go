// Package tgtest provides an in-memory tg.Sender for handler tests.
package tgtest

import (
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrBlocked = errors.New("Forbidden: bot was blocked by the user")

// Recorder captures everything sent through it. Sends to chats listed in Fail return ErrBlocked.
type Recorder struct {
	mu       sync.Mutex
	Sent     []tgbotapi.Chattable
	Requests []tgbotapi.Chattable
	Fail     map[int64]bool
	nextID   int
}

func NewRecorder() *Recorder {
	return &Recorder{Fail: map[int64]bool{}}
}

func (r *Recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chatID := ChatID(c)
	if r.Fail[chatID] {
		return tgbotapi.Message{}, ErrBlocked
	}

	r.Sent = append(r.Sent, c)
	r.nextID++

	msg := tgbotapi.Message{MessageID: r.nextID, Chat: &tgbotapi.Chat{ID: chatID}}
	if _, ok := c.(tgbotapi.PhotoConfig); ok {
		msg.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "photo-file-id"}}
	}

	return msg, nil
}

func (r *Recorder) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Requests = append(r.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sent = nil
	r.Requests = nil
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.Sent) + len(r.Requests)
}

// Last returns the most recent sent chattable, or nil.
func (r *Recorder) Last() tgbotapi.Chattable {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Sent) == 0 {
		return nil
	}
	return r.Sent[len(r.Sent)-1]
}

// Texts returns the text (or caption) of every sent chattable, in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	texts := make([]string, 0, len(r.Sent))
	for _, c := range r.Sent {
		texts = append(texts, Text(c))
	}
	return texts
}

// ChatIDs returns the destination of every sent chattable, in order.
func (r *Recorder) ChatIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.Sent))
	for _, c := range r.Sent {
		ids = append(ids, ChatID(c))
	}
	return ids
}

func ChatID(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.PhotoConfig:
		return v.ChatID
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID
	}
	return 0
}

func Text(c tgbotapi.Chattable) string {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.Text
	case tgbotapi.PhotoConfig:
		return v.Caption
	case tgbotapi.EditMessageTextConfig:
		return v.Text
	}
	return ""
}

// ReplyLabels flattens the reply keyboard of a message config, if any.
func ReplyLabels(c tgbotapi.Chattable) []string {
	var markup interface{}
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		markup = v.ReplyMarkup
	case tgbotapi.PhotoConfig:
		markup = v.ReplyMarkup
	}

	kb, ok := markup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		return nil
	}

	var labels []string
	for _, row := range kb.Keyboard {
		for _, b := range row {
			labels = append(labels, b.Text)
		}
	}
	return labels
}
