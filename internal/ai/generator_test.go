package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/fcgen/internal/models"
)

type fakeClient struct {
	answer string
	err    error

	model, prompt, content string
	deadline               bool
}

func (f *fakeClient) Complete(ctx context.Context, model, prompt, content string) (string, error) {
	f.model, f.prompt, f.content = model, prompt, content
	_, f.deadline = ctx.Deadline()
	return f.answer, f.err
}

func factoryFor(c Client, gotKey *string) ClientFactory {
	return func(_ context.Context, _ string, apiKey string) (Client, error) {
		if gotKey != nil {
			*gotKey = apiKey
		}
		return c, nil
	}
}

func TestGenerator_Generate(t *testing.T) {
	client := &fakeClient{answer: "```json\n[{\"front\":\"What is Go?\",\"back\":\"A language\"},{\"front\":\"Who made it?\",\"back\":\"Google\"}]\n```"}
	core, logs := observer.New(zap.InfoLevel)
	var key string
	g := NewGenerator(factoryFor(client, &key), "PROMPT", time.Minute, zap.New(core))

	cards, err := g.Generate(context.Background(), models.AIConfig{Provider: ProviderOpenAI, Model: "gpt-4"}, "sk-key", "my note")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is Go?", cards[0].Front)
	assert.Equal(t, "Google", cards[1].Back)
	assert.NotEqual(t, cards[0].ID, cards[1].ID)

	assert.Equal(t, "sk-key", key)
	assert.Equal(t, "gpt-4", client.model)
	assert.Equal(t, "PROMPT", client.prompt)
	assert.Equal(t, "my note", client.content)
	assert.True(t, client.deadline)

	entries := logs.FilterMessage("ai request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gpt-4", entries[0].ContextMap()["model"])
}

func TestGenerator_ClientError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	callErr := errors.New("network down")
	g := NewGenerator(factoryFor(&fakeClient{err: callErr}, nil), "P", 0, zap.New(core))

	_, err := g.Generate(context.Background(), models.AIConfig{Provider: ProviderOpenAI, Model: "gpt-4"}, "k", "note")
	require.ErrorIs(t, err, callErr)
	assert.Equal(t, 1, logs.FilterMessage("ai request failed").Len())
}

func TestGenerator_FactoryError(t *testing.T) {
	factoryErr := errors.New("no provider")
	g := NewGenerator(func(context.Context, string, string) (Client, error) { return nil, factoryErr }, "P", 0, nil)

	_, err := g.Generate(context.Background(), models.AIConfig{}, "k", "note")
	require.ErrorIs(t, err, factoryErr)
}

func TestParseCards(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    int
		wantErr error
	}{
		{"plain", `[{"front":"a","back":"b"}]`, 1, nil},
		{"fenced", "```json\n[{\"front\":\"a\",\"back\":\"b\"}]\n```", 1, nil},
		{"prose around", "Here you go:\n[{\"front\":\"a\",\"back\":\"b\"},{\"front\":\"c\",\"back\":\"d\"}]\nEnjoy!", 2, nil},
		{"skips blanks", `[{"front":"a","back":""},{"front":" ","back":"x"},{"front":"c","back":"d"}]`, 1, nil},
		{"empty array", `[]`, 0, ErrNoCards},
		{"all blank", `[{"front":"","back":""}]`, 0, ErrNoCards},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := ParseCards(tc.answer)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cards, tc.want)
		})
	}
}

func TestParseCards_NotJSON(t *testing.T) {
	_, err := ParseCards("I cannot help with that.")
	require.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("ä", 150)
	p := preview(long)
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.Len(t, []rune(p), 103)
}
