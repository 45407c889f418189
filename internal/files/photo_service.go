package files

import (
	"fmt"
	"os"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/tg"
)

// PhotoService sends one local picture, uploading it once and reusing the Telegram file_id afterwards.
type PhotoService struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	fileID string
}

func NewPhotoService(path string, logger *zap.Logger) *PhotoService {
	return &PhotoService{
		path:   path,
		logger: logger,
	}
}

func (ps *PhotoService) Path() string {
	return ps.path
}

// Send posts the picture with a caption and keyboard. When the file is missing
// or the upload fails the caption goes out as a plain message instead.
func (ps *PhotoService) Send(sender tg.Sender, chatID int64, caption string, markup interface{}) error {
	file, cached, err := ps.source()
	if err != nil {
		ps.logger.Warn("photo unavailable, sending text", zap.String("path", ps.path), zap.Error(err))
		return ps.sendText(sender, chatID, caption, markup)
	}

	photo := tgbotapi.NewPhoto(chatID, file)
	photo.Caption = caption
	photo.ReplyMarkup = markup

	sent, err := sender.Send(photo)
	if err != nil {
		ps.logger.Error("cannot send photo", zap.Int64("chat_id", chatID), zap.Error(err))
		if cached {
			ps.remember("")
		}
		return ps.sendText(sender, chatID, caption, markup)
	}

	if !cached && len(sent.Photo) > 0 {
		ps.remember(sent.Photo[len(sent.Photo)-1].FileID)
	}

	return nil
}

func (ps *PhotoService) source() (tgbotapi.RequestFileData, bool, error) {
	ps.mu.Lock()
	fileID := ps.fileID
	ps.mu.Unlock()

	if fileID != "" {
		return tgbotapi.FileID(fileID), true, nil
	}

	if _, err := os.Stat(ps.path); err != nil {
		return nil, false, fmt.Errorf("PhotoService.source: %w", err)
	}

	return tgbotapi.FilePath(ps.path), false, nil
}

func (ps *PhotoService) remember(fileID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.fileID = fileID
}

func (ps *PhotoService) sendText(sender tg.Sender, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup

	if _, err := sender.Send(msg); err != nil {
		return fmt.Errorf("PhotoService.sendText: %w", err)
	}

	return nil
}
