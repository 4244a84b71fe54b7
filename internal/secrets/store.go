// Package secrets keeps API keys outside of the persisted account data.
//
// A Store maps (service, field) pairs to opaque values. Three backends are
// provided: an in-memory map, an AES-GCM encrypted JSON file and a SQLite
// table. Vault wraps a Store with the error conventions used by the rest of
// the application.
package secrets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/fcgen/internal/models"
)

// Store is the low level secret backend.
type Store interface {
	Set(ctx context.Context, service, field, value string) error
	Get(ctx context.Context, service, field string) (string, bool, error)
	Delete(ctx context.Context, service, field string) error
}

// Vault exposes SetSecret, GetSecret and DeleteSecret on top of a Store.
type Vault struct {
	store Store
}

// NewVault creates a vault backed by store.
func NewVault(store Store) *Vault {
	return &Vault{store: store}
}

// SetSecret stores value under (service, field), replacing any previous one.
func (v *Vault) SetSecret(ctx context.Context, service, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("secret for %q: %w", service, models.ErrInvalidSecret)
	}
	if err := v.store.Set(ctx, service, field, value); err != nil {
		return fmt.Errorf("set secret for %q: %w", service, err)
	}
	return nil
}

// GetSecret returns the value stored under (service, field) or
// models.ErrSecretNotFound.
func (v *Vault) GetSecret(ctx context.Context, service, field string) (string, error) {
	value, ok, err := v.store.Get(ctx, service, field)
	if err != nil {
		return "", fmt.Errorf("get secret for %q: %w", service, err)
	}
	if !ok {
		return "", fmt.Errorf("secret for %q: %w", service, models.ErrSecretNotFound)
	}
	return value, nil
}

// DeleteSecret removes the value stored under (service, field). Deleting a
// missing secret is not an error.
func (v *Vault) DeleteSecret(ctx context.Context, service, field string) error {
	if err := v.store.Delete(ctx, service, field); err != nil {
		return fmt.Errorf("delete secret for %q: %w", service, err)
	}
	return nil
}

type entryKey struct {
	service string
	field   string
}

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[entryKey]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[entryKey]string)}
}

func (m *MemoryStore) Set(_ context.Context, service, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entryKey{service, field}] = value
	return nil
}

func (m *MemoryStore) Get(_ context.Context, service, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[entryKey{service, field}]
	return v, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, service, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryKey{service, field})
	return nil
}

// Open builds the Store selected by backend ("memory", "file" or "sqlite").
func Open(backend, path string, key []byte) (Store, error) {
	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		aead, err := NewAEADFromKey(key)
		if err != nil {
			return nil, err
		}
		return NewFileStore(path, aead), nil
	case "sqlite":
		aead, err := NewAEADFromKey(key)
		if err != nil {
			return nil, err
		}
		return OpenSQLiteStore(path, aead)
	default:
		return nil, fmt.Errorf("unknown vault backend %q", backend)
	}
}
