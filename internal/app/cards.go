package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/fsutil"
	"github.com/atinyakov/fcgen/internal/menu"
	"github.com/atinyakov/fcgen/internal/models"
	"github.com/atinyakov/fcgen/internal/session"
)

func (a *App) sourceFile(_ context.Context, s *session.Context) error {
	path, err := a.con.Prompt("Path to the note (.txt): ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return nil
	}
	text, err := a.notes.Read(path)
	if err != nil {
		a.con.Error("Could not load the note: %v", err)
		return nil
	}
	s.Note = text
	s.Menu = menu.Main
	a.log.Info("note loaded", zap.String("path", strings.TrimSpace(path)), zap.Int("chars", len([]rune(text))))
	a.con.Info("Note loaded (%d characters).", len([]rune(text)))
	return nil
}

func (a *App) sourceNotion(_ context.Context, _ *session.Context) error {
	a.con.Info("Notion notes are coming soon.")
	return nil
}

// generateCards replaces the temporary deck with freshly generated cards.
// On any failure the session is left as it was.
func (a *App) generateCards(ctx context.Context, s *session.Context) error {
	a.con.Log("Generating cards...")
	if s.Note == "" {
		a.con.Error("No note selected to generate cards from.")
		return nil
	}
	cred, ok := s.AI()
	if !ok {
		a.con.Error("No valid AI credentials found for generating cards.")
		return nil
	}
	cfg, _ := cred.AIConfig()

	key, err := a.vault.GetSecret(ctx, cred.ServiceName, models.SecretField(s.Username, s.ProfileName))
	if errors.Is(err, models.ErrSecretNotFound) {
		a.con.Error("No API key stored for %s. Set it up again.", cred.ServiceName)
		return nil
	}
	if err != nil {
		return err
	}

	cards, err := a.gen.Generate(ctx, cfg, key, s.Note)
	if err != nil {
		a.log.Warn("generation failed", zap.String("service", cred.ServiceName), zap.Error(err))
		a.con.Error("Generating flashcards failed: %v", err)
		return nil
	}
	s.TempDeck = models.NewDeck(cards...)
	a.log.Info("cards generated", zap.String("service", cred.ServiceName), zap.Int("count", len(cards)))
	a.con.Info("%d flashcards generated successfully!", len(cards))
	return nil
}

var cardOptions = []string{"Approve card", "Reject card", "Edit card", "Back to main menu"}

// workWithCards walks the temporary deck. Every decided card leaves the
// temporary deck; approved and edited cards go to the final deck.
func (a *App) workWithCards(_ context.Context, s *session.Context) error {
	if s.TempDeck.Len() == 0 {
		a.con.Error("No cards to work with.")
		return nil
	}
	if s.FinalDeck == nil {
		s.FinalDeck = models.NewDeck()
	}

	pending := append([]models.Card(nil), s.TempDeck.Cards...)
	for n, card := range pending {
		for {
			a.con.Title(fmt.Sprintf("Card %d of %d", n+1, len(pending)))
			a.con.Print(card.String(), "---")
			i, ok, err := a.choose("What you want to do?", cardOptions)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			switch i {
			case 0:
				s.FinalDeck.Add(card)
			case 1:
				a.con.Info("Card rejected.")
			case 2:
				edited, err := a.editCard(card)
				if err != nil {
					return err
				}
				s.FinalDeck.Add(edited)
			case 3:
				return nil
			}
			break
		}
		if err := s.TempDeck.Remove(card); err != nil {
			return err
		}
	}
	a.con.Info("There are no more cards to work through.")
	return nil
}

// editCard asks for new sides; a blank answer keeps the old text. The result
// is a new card.
func (a *App) editCard(c models.Card) (models.Card, error) {
	front, err := a.con.Prompt(fmt.Sprintf("Front [%s]: ", c.Front))
	if err != nil {
		return models.Card{}, err
	}
	back, err := a.con.Prompt(fmt.Sprintf("Back [%s]: ", c.Back))
	if err != nil {
		return models.Card{}, err
	}
	if strings.TrimSpace(front) == "" {
		front = c.Front
	}
	if strings.TrimSpace(back) == "" {
		back = c.Back
	}
	return models.NewCard(strings.TrimSpace(front), strings.TrimSpace(back)), nil
}

const (
	processedName   = "processed_cards"
	unprocessedName = "unprocessed_cards"
)

func (a *App) exportCards(_ context.Context, s *session.Context) error {
	a.con.Log("Exporting cards to .txt file...")
	temp, final := s.TempDeck, s.FinalDeck

	switch {
	case final.Len() == 0 && temp.Len() == 0:
		a.con.Info("There is nothing to export. Please generate cards first.")
		return nil
	case final.Len() == 0:
		a.con.Info("You didn't process any of the generated cards.")
		yes, ok, err := a.con.Confirm("Would you like to export generated cards without editing them?")
		if err != nil {
			return err
		}
		if !ok {
			a.con.Error(`Invalid selection, please select "Y" or "N".`)
			return nil
		}
		if yes {
			return a.saveDeck(temp, unprocessedName)
		}
		return nil
	case temp.Len() == 0:
		return a.saveDeck(final, processedName)
	}

	a.con.Info("You didn't process all of the generated cards.")
	i, ok, err := a.choose("What you want to do?", []string{
		"Export processed cards",
		"Export not processed cards",
		"Export all processed and not processed cards",
		"Back to main menu",
	})
	if err != nil || !ok {
		return err
	}
	switch i {
	case 0:
		return a.saveDeck(final, processedName)
	case 1:
		return a.saveDeck(temp, unprocessedName)
	case 2:
		if err := a.saveDeck(final, processedName); err != nil {
			return err
		}
		return a.saveDeck(temp, unprocessedName)
	}
	return nil
}

func (a *App) saveDeck(d *models.Deck, name string) error {
	var buf bytes.Buffer
	for _, c := range d.Cards {
		buf.WriteString(c.String())
		buf.WriteString("\n\n")
	}
	path := filepath.Join(a.exportDir, fmt.Sprintf("%s_%s.txt", name, a.now().Format("2006-01-02_15-04-05")))
	if err := fsutil.AtomicWriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export cards: %w", err)
	}
	a.log.Info("cards exported", zap.String("path", path), zap.Int("count", d.Len()))
	a.con.Info("Cards successfully saved to %s.", path)
	return nil
}
