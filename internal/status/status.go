package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

type Reader interface {
	IsActive() bool
}

type Switch interface {
	Reader
	SetActive(active bool) error
	Toggle() (bool, error)
}

type payload struct {
	IsActive bool `json:"is_active"`
}

// File keeps the customer bot's on/off flag in a small JSON file shared by both bots.
// Every read goes to disk so a toggle from the admin process is seen on the next update.
type File struct {
	path   string
	logger *zap.Logger
}

func NewFile(path string, logger *zap.Logger) *File {
	return &File{path: path, logger: logger}
}

func (f *File) Path() string {
	return f.path
}

// Ensure creates the file in the active state if it does not exist yet.
func (f *File) Ensure() error {
	_, err := os.Stat(f.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("status.Ensure: %w", err)
	}

	return f.SetActive(true)
}

func (f *File) IsActive() bool {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		f.logger.Warn("cannot read status file, treating bot as active", zap.String("path", f.path), zap.Error(err))
		return true
	}

	p := payload{IsActive: true}
	if err := json.Unmarshal(data, &p); err != nil {
		f.logger.Warn("corrupt status file, treating bot as active", zap.String("path", f.path), zap.Error(err))
		return true
	}

	return p.IsActive
}

// SetActive overwrites the file. Concurrent writers race; the last one wins.
func (f *File) SetActive(active bool) error {
	data, err := json.Marshal(payload{IsActive: active})
	if err != nil {
		return fmt.Errorf("status.SetActive: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("status.SetActive: %w", err)
	}

	return nil
}

// Toggle flips the flag and returns the new value.
func (f *File) Toggle() (bool, error) {
	next := !f.IsActive()
	if err := f.SetActive(next); err != nil {
		return !next, err
	}

	return next, nil
}
