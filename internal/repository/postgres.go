// Package repository provides persistence implementations for the account
// directory.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/atinyakov/fcgen/internal/models"
)

// PostgresUserRepository stores one JSONB document per user in the
// user_records table.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Load reads every stored user record keyed by username.
func (r *PostgresUserRepository) Load(ctx context.Context) (map[string]models.UserRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT username, record FROM user_records`)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.UserRecord)
	for rows.Next() {
		var (
			username string
			raw      []byte
		)
		if err := rows.Scan(&username, &raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var rec models.UserRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode user %q: %w", username, err)
		}
		out[username] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// Save replaces the stored directory with records inside one transaction.
func (r *PostgresUserRepository) Save(ctx context.Context, records map[string]models.UserRecord) error {
	names := sortedNames(records)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_records WHERE NOT (username = ANY($1))`,
		pq.Array(names),
	); err != nil {
		return fmt.Errorf("delete removed users: %w", err)
	}

	for _, name := range names {
		raw, err := json.Marshal(records[name])
		if err != nil {
			return fmt.Errorf("encode user %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_records (username, record) VALUES ($1, $2)
			ON CONFLICT (username) DO UPDATE SET record = EXCLUDED.record
		`, name, raw); err != nil {
			return fmt.Errorf("upsert user %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sortedNames(records map[string]models.UserRecord) []string {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
