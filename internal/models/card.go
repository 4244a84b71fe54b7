package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Card represents a single flashcard.
type Card struct {
	// ID is generated at creation and never reused.
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// NewCard creates a card with a fresh ID.
func NewCard(front, back string) Card {
	return Card{ID: uuid.NewString(), Front: front, Back: back}
}

func (c Card) String() string {
	return fmt.Sprintf("Card ID: %s\nFront: %s\nBack: %s", c.ID, c.Front, c.Back)
}

// Deck is an ordered collection of cards.
type Deck struct {
	Cards []Card
}

// NewDeck creates a deck holding cards.
func NewDeck(cards ...Card) *Deck {
	d := &Deck{}
	d.Add(cards...)
	return d
}

// Add appends cards to the deck.
func (d *Deck) Add(cards ...Card) {
	d.Cards = append(d.Cards, cards...)
}

// Remove deletes the card with the same ID as c.
func (d *Deck) Remove(c Card) error {
	for i, card := range d.Cards {
		if card.ID == c.ID {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("card %s: %w", c.ID, ErrCardNotFound)
}

// Len returns the number of cards; a nil deck is empty.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cards)
}
