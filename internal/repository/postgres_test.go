package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/atinyakov/fcgen/internal/models"
)

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestLoad_Rows(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	rec := models.UserRecord{Username: "alice", PasswordHash: "h", Profiles: []models.ProfileRecord{{Name: "main"}}}
	raw, _ := json.Marshal(rec)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username, record FROM user_records`)).
		WillReturnRows(sqlmock.NewRows([]string{"username", "record"}).AddRow("alice", raw))

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got["alice"].PasswordHash != "h" || got["alice"].Profiles[0].Name != "main" {
		t.Errorf("unexpected records: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username, record FROM user_records`)).
		WillReturnRows(sqlmock.NewRows([]string{"username", "record"}).AddRow("alice", []byte("{")))

	if _, err := repo.Load(context.Background()); err == nil {
		t.Errorf("expected error, got nil")
	}
}

func TestLoad_QueryError(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username, record FROM user_records`)).
		WillReturnError(errors.New("query failed"))

	if _, err := repo.Load(context.Background()); err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	records := map[string]models.UserRecord{
		"bob":   {Username: "bob", PasswordHash: "b"},
		"alice": {Username: "alice", PasswordHash: "a"},
	}
	aliceRaw, _ := json.Marshal(records["alice"])
	bobRaw, _ := json.Marshal(records["bob"])

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_records WHERE NOT (username = ANY($1))`)).
		WithArgs(pq.Array([]string{"alice", "bob"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_records (username, record) VALUES ($1, $2)`)).
		WithArgs("alice", aliceRaw).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_records (username, record) VALUES ($1, $2)`)).
		WithArgs("bob", bobRaw).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Save(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_RollbackOnError(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	records := map[string]models.UserRecord{"alice": {Username: "alice"}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_records`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_records`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	if err := repo.Save(context.Background(), records); err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_BeginError(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectBegin().WillReturnError(errors.New("no tx"))

	if err := repo.Save(context.Background(), nil); err == nil {
		t.Errorf("expected error, got nil")
	}
}
