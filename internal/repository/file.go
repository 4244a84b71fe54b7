package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/atinyakov/fcgen/internal/fsutil"
	"github.com/atinyakov/fcgen/internal/models"
)

type usersFile struct {
	Users []models.UserRecord `json:"users"`
}

// JSONFileRepository keeps the directory in a single JSON file which is
// replaced atomically on every save.
type JSONFileRepository struct {
	Path string
}

// NewJSONFileRepository creates a repository backed by the file at path.
func NewJSONFileRepository(path string) *JSONFileRepository {
	return &JSONFileRepository{Path: path}
}

// Load reads the directory. A missing file is an empty directory; an
// unreadable one is an error so that a later save cannot overwrite it.
func (r *JSONFileRepository) Load(_ context.Context) (map[string]models.UserRecord, error) {
	out := make(map[string]models.UserRecord)

	b, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var f usersFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode users file %s: %w", r.Path, err)
	}
	for _, rec := range f.Users {
		if _, dup := out[rec.Username]; dup {
			return nil, fmt.Errorf("users file %s: user %q: %w", r.Path, rec.Username, models.ErrDuplicateUser)
		}
		out[rec.Username] = rec
	}
	return out, nil
}

// Save writes records sorted by username.
func (r *JSONFileRepository) Save(_ context.Context, records map[string]models.UserRecord) error {
	f := usersFile{Users: make([]models.UserRecord, 0, len(records))}
	for _, name := range sortedNames(records) {
		f.Users = append(f.Users, records[name])
	}

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := fsutil.AtomicWriteFile(r.Path, b, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}
