// Package ai talks to the language model providers that turn notes into
// flashcards.
package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without content.
var ErrEmptyResponse = errors.New("empty response from AI")

// Client sends one prompt and returns the model's text answer.
type Client interface {
	// Complete runs model with prompt as the instruction and content as the
	// user input.
	Complete(ctx context.Context, model, prompt, content string) (string, error)
}
