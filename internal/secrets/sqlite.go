package secrets

import (
	"context"
	"crypto/cipher"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/fcgen/internal/db"
)

// SQLiteStore keeps encrypted secrets in the vault_secrets table.
type SQLiteStore struct {
	db   *sql.DB
	aead cipher.AEAD
}

// NewSQLiteStore wraps an already opened database.
func NewSQLiteStore(conn *sql.DB, aead cipher.AEAD) *SQLiteStore {
	return &SQLiteStore{db: conn, aead: aead}
}

// OpenSQLiteStore opens the database at path and prepares its schema.
func OpenSQLiteStore(path string, aead cipher.AEAD) (*SQLiteStore, error) {
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(conn, aead), nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Set(ctx context.Context, service, field, value string) error {
	ct, err := seal(s.aead, []byte(value))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vault_secrets (service, field, value) VALUES (?, ?, ?)
		ON CONFLICT (service, field) DO UPDATE SET value = excluded.value
	`, service, field, ct)
	if err != nil {
		return fmt.Errorf("upsert secret: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, service, field string) (string, bool, error) {
	var ct []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM vault_secrets WHERE service = ? AND field = ?`,
		service, field,
	).Scan(&ct)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select secret: %w", err)
	}
	plain, err := open(s.aead, ct)
	if err != nil {
		return "", false, err
	}
	return string(plain), true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, service, field string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM vault_secrets WHERE service = ? AND field = ?`,
		service, field,
	)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}
