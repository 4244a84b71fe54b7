package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/fcgen/internal/models"
)

// Provider ids stored in models.AIConfig.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Provider describes a supported AI service.
type Provider struct {
	ID string
	// ServiceName is the credential name used when the provider is set up.
	ServiceName string
	Models      []string
	keyLength   int
	keyPrefix   string
	keyBody     func(rune) bool
}

var providers = []Provider{
	{
		ID:          ProviderOpenAI,
		ServiceName: "OpenAI",
		Models:      []string{"gpt-3.5-turbo", "gpt-3.5-turbo-16k", "gpt-4", "gpt-4-turbo-preview"},
		keyLength:   51,
		keyPrefix:   "sk-",
		keyBody:     isAlnum,
	},
	{
		ID:          ProviderGemini,
		ServiceName: "Gemini",
		Models:      []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"},
		keyLength:   39,
		keyPrefix:   "AIza",
		keyBody: func(r rune) bool {
			return isAlnum(r) || r == '-' || r == '_'
		},
	},
}

func isAlnum(r rune) bool {
	return r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

// LookupProvider returns the provider with the given id.
func LookupProvider(id string) (Provider, error) {
	for _, p := range providers {
		if p.ID == id {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("unknown AI provider %q", id)
}

// ValidateKey checks the format of an API key for the provider without any
// network call.
func ValidateKey(providerID, key string) error {
	p, err := LookupProvider(providerID)
	if err != nil {
		return err
	}
	return p.ValidateKey(key)
}

// ValidateKey checks the length, prefix and body characters of key.
func (p Provider) ValidateKey(key string) error {
	if len(key) != p.keyLength {
		return fmt.Errorf("%s key must be %d characters long: %w", p.ServiceName, p.keyLength, models.ErrInvalidSecret)
	}
	if !strings.HasPrefix(key, p.keyPrefix) {
		return fmt.Errorf("%s key must start with %q: %w", p.ServiceName, p.keyPrefix, models.ErrInvalidSecret)
	}
	for _, r := range key[len(p.keyPrefix):] {
		if !p.keyBody(r) {
			return fmt.Errorf("%s key contains invalid characters: %w", p.ServiceName, models.ErrInvalidSecret)
		}
	}
	return nil
}

// ClientFactory builds a Client for a provider and API key.
type ClientFactory func(ctx context.Context, providerID, apiKey string) (Client, error)

// NewClientFactory returns the factory used in production. openAIBaseURL
// may point at a compatible endpoint.
func NewClientFactory(openAIBaseURL string, timeout time.Duration) ClientFactory {
	return func(ctx context.Context, providerID, apiKey string) (Client, error) {
		switch providerID {
		case ProviderOpenAI:
			return NewOpenAIClient(apiKey, openAIBaseURL, timeout), nil
		case ProviderGemini:
			return NewGeminiClient(ctx, apiKey, "")
		default:
			return nil, fmt.Errorf("unknown AI provider %q", providerID)
		}
	}
}
