package secrets

import (
	"context"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/atinyakov/fcgen/internal/fsutil"
)

type fileEntry struct {
	Service string `json:"service"`
	Field   string `json:"field"`
	Data    string `json:"data"` // base64 of nonce || ciphertext
}

type fileContents struct {
	Secrets []fileEntry `json:"secrets"`
}

// FileStore persists secrets as an encrypted JSON document. Every mutation
// rewrites the whole file through a temporary file and rename.
type FileStore struct {
	path string
	aead cipher.AEAD

	mu      sync.Mutex
	loaded  bool
	entries map[entryKey]string
}

// NewFileStore creates a store backed by the file at path. The file is read
// on first use.
func NewFileStore(path string, aead cipher.AEAD) *FileStore {
	return &FileStore{path: path, aead: aead}
}

func (s *FileStore) Set(_ context.Context, service, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	k := entryKey{service, field}
	prev, had := s.entries[k]
	s.entries[k] = value
	if err := s.save(); err != nil {
		if had {
			s.entries[k] = prev
		} else {
			delete(s.entries, k)
		}
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, service, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", false, err
	}
	v, ok := s.entries[entryKey{service, field}]
	return v, ok, nil
}

func (s *FileStore) Delete(_ context.Context, service, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	k := entryKey{service, field}
	prev, had := s.entries[k]
	if !had {
		return nil
	}
	delete(s.entries, k)
	if err := s.save(); err != nil {
		s.entries[k] = prev
		return err
	}
	return nil
}

func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}
	s.entries = make(map[entryKey]string)

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read vault: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(b, &contents); err != nil {
		return fmt.Errorf("decode vault: %w", err)
	}
	for _, e := range contents.Secrets {
		raw, err := base64.StdEncoding.DecodeString(e.Data)
		if err != nil {
			return fmt.Errorf("decode secret %s/%s: %w", e.Service, e.Field, err)
		}
		plain, err := open(s.aead, raw)
		if err != nil {
			return fmt.Errorf("secret %s/%s: %w", e.Service, e.Field, err)
		}
		s.entries[entryKey{e.Service, e.Field}] = string(plain)
	}
	s.loaded = true
	return nil
}

func (s *FileStore) save() error {
	contents := fileContents{Secrets: make([]fileEntry, 0, len(s.entries))}
	for k, v := range s.entries {
		ct, err := seal(s.aead, []byte(v))
		if err != nil {
			return err
		}
		contents.Secrets = append(contents.Secrets, fileEntry{
			Service: k.service,
			Field:   k.field,
			Data:    base64.StdEncoding.EncodeToString(ct),
		})
	}
	sort.Slice(contents.Secrets, func(i, j int) bool {
		a, b := contents.Secrets[i], contents.Secrets[j]
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		return a.Field < b.Field
	})

	b, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	if err := fsutil.AtomicWriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}
