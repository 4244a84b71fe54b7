package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/fcgen/internal/models"
)

func validOpenAIKey() string {
	return "sk-" + strings.Repeat("a1B2", 12)
}

func validGeminiKey() string {
	return "AIza" + strings.Repeat("x-_9Z", 7)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		wantErr  bool
	}{
		{"openai valid", ProviderOpenAI, validOpenAIKey(), false},
		{"openai too short", ProviderOpenAI, "sk-abc", true},
		{"openai wrong prefix", ProviderOpenAI, "pk-" + strings.Repeat("a1B2", 12), true},
		{"openai non alnum", ProviderOpenAI, "sk-" + strings.Repeat("a1B2", 11) + "a1B-", true},
		{"openai non ascii", ProviderOpenAI, "sk-" + strings.Repeat("a1B2", 11) + "a1é", true},
		{"gemini valid", ProviderGemini, validGeminiKey(), false},
		{"gemini wrong prefix", ProviderGemini, "AIzb" + strings.Repeat("x-_9Z", 7), true},
		{"gemini bad char", ProviderGemini, "AIza" + strings.Repeat("x-_9Z", 6) + "x-_9!", true},
		{"empty", ProviderOpenAI, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateKey(tc.provider, tc.key)
			if tc.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidSecret)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateKey_Lengths(t *testing.T) {
	assert.Len(t, validOpenAIKey(), 51)
	assert.Len(t, validGeminiKey(), 39)
}

func TestValidateKey_UnknownProvider(t *testing.T) {
	err := ValidateKey("claude", "whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrInvalidSecret)
}

func TestLookupProvider(t *testing.T) {
	p, err := LookupProvider(ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", p.ServiceName)
	assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-3.5-turbo-16k", "gpt-4", "gpt-4-turbo-preview"}, p.Models)

	p, err = LookupProvider(ProviderGemini)
	require.NoError(t, err)
	assert.Equal(t, "Gemini", p.ServiceName)
	assert.NotEmpty(t, p.Models)
}

func TestClientFactory(t *testing.T) {
	factory := NewClientFactory("http://localhost:1/v1", time.Second)

	c, err := factory(context.Background(), ProviderOpenAI, validOpenAIKey())
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = factory(context.Background(), ProviderGemini, validGeminiKey())
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, c)

	_, err = factory(context.Background(), "claude", "k")
	require.Error(t, err)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "")
	require.Error(t, err)
}
