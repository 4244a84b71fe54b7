package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	c := NewCard("What is Go?", "A programming language")
	assert.NotEmpty(t, c.ID)
	assert.Contains(t, c.String(), "Card ID")
	assert.Contains(t, c.String(), "What is Go?")
	assert.Contains(t, c.String(), "A programming language")

	other := NewCard("What is Go?", "A programming language")
	assert.NotEqual(t, c.ID, other.ID)
}

func TestDeck_AddRemove(t *testing.T) {
	first := NewCard("Front 1", "Back 1")
	second := NewCard("Front 2", "Back 2")
	d := NewDeck(first, second)
	require.Equal(t, 2, d.Len())

	require.NoError(t, d.Remove(first))
	assert.Equal(t, []Card{second}, d.Cards)

	require.ErrorIs(t, d.Remove(first), ErrCardNotFound)
}

func TestDeck_RemoveMatchesByIdentity(t *testing.T) {
	c := NewCard("Front", "Back")
	twin := NewCard("Front", "Back")
	d := NewDeck(c)

	require.ErrorIs(t, d.Remove(twin), ErrCardNotFound)
	assert.Equal(t, 1, d.Len())
}

func TestDeck_NilLen(t *testing.T) {
	var d *Deck
	assert.Equal(t, 0, d.Len())
}
