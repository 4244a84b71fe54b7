package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/atinyakov/fcgen/internal/models"
)

func TestJSONFileRepository_MissingFile(t *testing.T) {
	repo := NewJSONFileRepository(filepath.Join(t.TempDir(), "users.json"))

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no users, got %d", len(got))
	}
}

func TestJSONFileRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "users.json")
	repo := NewJSONFileRepository(path)

	records := map[string]models.UserRecord{
		"bob": {Username: "bob", PasswordHash: "b", Profiles: []models.ProfileRecord{{Name: "main", Credentials: []models.CredentialRecord{}}}},
		"alice": {Username: "alice", PasswordHash: "a", Profiles: []models.ProfileRecord{{
			Name: "main",
			Credentials: []models.CredentialRecord{{
				ServiceName: "OpenAI",
				Kind:        models.KindAI,
				Config:      json.RawMessage(`{"provider":"openai","model":"gpt-4"}`),
			}},
			DefaultAI: "OpenAI",
		}}},
	}
	if err := repo.Save(ctx, records); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	opt := cmp.Transformer("compact", func(r json.RawMessage) string {
		var buf bytes.Buffer
		_ = json.Compact(&buf, r)
		return buf.String()
	})
	if diff := cmp.Diff(records, got, opt); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	var onDisk usersFile
	b, _ := os.ReadFile(path)
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if onDisk.Users[0].Username != "alice" || onDisk.Users[1].Username != "bob" {
		t.Errorf("users not sorted: %+v", onDisk.Users)
	}
}

func TestJSONFileRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewJSONFileRepository(path).Load(context.Background())
	if err == nil {
		t.Fatalf("expected error for corrupt file")
	}
}

func TestJSONFileRepository_DuplicateUsername(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	content := `{"users":[{"username":"a","password_hash":"x","profiles":[]},{"username":"a","password_hash":"y","profiles":[]}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewJSONFileRepository(path).Load(context.Background())
	if !errors.Is(err, models.ErrDuplicateUser) {
		t.Errorf("err = %v; want ErrDuplicateUser", err)
	}
}
