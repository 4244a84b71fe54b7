// Package notes reads the source notes flashcards are generated from.
package notes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("only .txt notes are supported")
	ErrEmptyNote         = errors.New("note is empty")
)

// Reader loads a note from a path.
type Reader interface {
	Read(path string) (string, error)
}

// TxtReader reads plain text notes.
type TxtReader struct{}

func (TxtReader) Read(path string) (string, error) {
	path = strings.TrimSpace(path)
	if !strings.EqualFold(filepath.Ext(path), ".txt") {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyNote)
	}
	return text, nil
}
