package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUser(t *testing.T, profiles, credentials int) *User {
	t.Helper()
	u := NewUser("alice", "$2a$10$hash")
	for i := 0; i < profiles; i++ {
		p, err := u.AddProfile(fmt.Sprintf("profile-%d", i))
		require.NoError(t, err)
		for j := 0; j < credentials; j++ {
			_, err := p.AddCredential(NewAICredential(fmt.Sprintf("svc-%d", j), "openai", fmt.Sprintf("model-%d", j)))
			require.NoError(t, err)
		}
	}
	return u
}

func TestRecord_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		for _, m := range []int{0, 1, 4} {
			t.Run(fmt.Sprintf("%d profiles %d credentials", n, m), func(t *testing.T) {
				u := buildUser(t, n, m)

				rec, err := ToRecord(u)
				require.NoError(t, err)
				raw, err := json.Marshal(rec)
				require.NoError(t, err)

				var decoded UserRecord
				require.NoError(t, json.Unmarshal(raw, &decoded))
				got, err := FromRecord(decoded)
				require.NoError(t, err)

				if diff := cmp.Diff(u, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestRecord_RoundTripKeepsNonFirstDefault(t *testing.T) {
	u := buildUser(t, 1, 3)
	require.NoError(t, u.Profiles[0].SetDefaultAI("svc-2"))

	rec, err := ToRecord(u)
	require.NoError(t, err)
	got, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "svc-2", got.Profiles[0].DefaultAI)
}

func TestRecord_JSONShape(t *testing.T) {
	u := NewUser("alice", "hash")
	p, _ := u.AddProfile("main")
	_, _ = p.AddCredential(NewAICredential("OpenAI", "openai", "gpt-4"))
	u.IsLoggedIn = true

	rec, err := ToRecord(u)
	require.NoError(t, err)
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"username": "alice",
		"password_hash": "hash",
		"profiles": [{
			"name": "main",
			"credentials": [{"service_name": "OpenAI", "kind": "AI", "config": {"provider": "openai", "model": "gpt-4"}}],
			"default_ai": "OpenAI"
		}]
	}`, string(raw))
}

func TestFromRecord_RepairsDanglingDefault(t *testing.T) {
	rec := UserRecord{
		Username: "bob",
		Profiles: []ProfileRecord{{
			Name: "main",
			Credentials: []CredentialRecord{
				{ServiceName: "OtherAI", Kind: KindAI, Config: json.RawMessage(`{"provider":"gemini","model":"m"}`)},
			},
			DefaultAI: "OpenAI",
		}},
	}
	u, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "OtherAI", u.Profiles[0].DefaultAI)
}

func TestFromRecord_Errors(t *testing.T) {
	tests := []struct {
		name string
		rec  UserRecord
		want error
	}{
		{
			name: "unknown kind",
			rec: UserRecord{Username: "bob", Profiles: []ProfileRecord{{
				Name:        "main",
				Credentials: []CredentialRecord{{ServiceName: "X", Kind: "mystery"}},
			}}},
			want: ErrUnknownKind,
		},
		{
			name: "duplicate profile",
			rec:  UserRecord{Username: "bob", Profiles: []ProfileRecord{{Name: "main"}, {Name: "main"}}},
			want: ErrDuplicateProfile,
		},
		{
			name: "duplicate service",
			rec: UserRecord{Username: "bob", Profiles: []ProfileRecord{{
				Name: "main",
				Credentials: []CredentialRecord{
					{ServiceName: "OpenAI", Kind: KindAI},
					{ServiceName: "OpenAI", Kind: KindAI},
				},
			}}},
			want: ErrDuplicateService,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromRecord(tc.rec)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

type notesConfig struct {
	Workspace string `json:"workspace"`
}

func (notesConfig) Kind() Kind { return "notes" }

func TestRegisterKind_CustomPayload(t *testing.T) {
	RegisterKind("notes", JSONCodec[notesConfig]())
	t.Cleanup(func() { delete(codecs, "notes") })

	u := NewUser("carol", "hash")
	p, _ := u.AddProfile("main")
	_, err := p.AddCredential(Credential{ServiceName: "Notion", Kind: "notes", Payload: notesConfig{Workspace: "ws"}})
	require.NoError(t, err)

	rec, err := ToRecord(u)
	require.NoError(t, err)
	got, err := FromRecord(rec)
	require.NoError(t, err)

	c, err := got.Profiles[0].Credential("Notion")
	require.NoError(t, err)
	assert.Equal(t, notesConfig{Workspace: "ws"}, c.Payload)
	assert.False(t, c.AICapable())
	assert.Empty(t, got.Profiles[0].DefaultAI)
}
