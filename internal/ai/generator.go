package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/models"
)

// ErrNoCards is returned when the answer holds no usable flashcard.
var ErrNoCards = errors.New("no flashcards in AI response")

// Generator turns a note into flashcards with the configured AI.
type Generator struct {
	newClient ClientFactory
	prompt    string
	timeout   time.Duration
	queries   *zap.Logger
}

// NewGenerator creates a generator. queries receives one entry per AI call.
func NewGenerator(factory ClientFactory, prompt string, timeout time.Duration, queries *zap.Logger) *Generator {
	if queries == nil {
		queries = zap.NewNop()
	}
	return &Generator{newClient: factory, prompt: prompt, timeout: timeout, queries: queries}
}

// Generate asks the AI described by cfg for flashcards about note.
func (g *Generator) Generate(ctx context.Context, cfg models.AIConfig, apiKey, note string) ([]models.Card, error) {
	client, err := g.newClient(ctx, cfg.Provider, apiKey)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := client.Complete(ctx, cfg.Model, g.prompt, note)
	if err != nil {
		g.queries.Error("ai request failed",
			zap.String("provider", cfg.Provider),
			zap.String("model", cfg.Model),
			zap.String("content", preview(note)),
			zap.Error(err),
		)
		return nil, err
	}
	g.queries.Info("ai request",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.String("content", preview(note)),
		zap.String("response", answer),
		zap.Duration("elapsed", time.Since(start)),
	)

	return ParseCards(answer)
}

func preview(s string) string {
	const n = 100
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type cardJSON struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ParseCards reads a JSON array of {"front","back"} objects, optionally
// wrapped in a markdown code fence or surrounded by prose. Entries missing
// either side are skipped.
func ParseCards(answer string) ([]models.Card, error) {
	text := strings.TrimSpace(answer)
	if i := strings.Index(text, "["); i >= 0 {
		if j := strings.LastIndex(text, "]"); j > i {
			text = text[i : j+1]
		}
	}

	var raw []cardJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse flashcards: %w", err)
	}

	cards := make([]models.Card, 0, len(raw))
	for _, c := range raw {
		front, back := strings.TrimSpace(c.Front), strings.TrimSpace(c.Back)
		if front == "" || back == "" {
			continue
		}
		cards = append(cards, models.NewCard(front, back))
	}
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	return cards, nil
}
