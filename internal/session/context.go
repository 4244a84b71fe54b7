// Package session holds the explicit session context threaded through the
// navigation engine and the derivation of the session stage.
package session

import (
	"github.com/atinyakov/fcgen/internal/menu"
	"github.com/atinyakov/fcgen/internal/models"
)

// State is the set of facts the stage is derived from.
type State struct {
	HasProfile bool
	HasAI      bool
	HasNote    bool
	HasCards   bool
}

// DeriveStage maps a state to its stage. Rules are evaluated in order and
// the first match wins.
func DeriveStage(s State) menu.Stage {
	switch {
	case !s.HasProfile:
		return menu.StageNoProfile
	case !s.HasAI:
		return menu.StageNoAI
	case !s.HasNote:
		return menu.StageNoNote
	case !s.HasCards:
		return menu.StageNoCards
	default:
		return menu.StageCardsReady
	}
}

// UserLookup resolves usernames to users.
type UserLookup interface {
	Lookup(username string) (*models.User, error)
}

// Context is the mutable state of one interactive session. User, profile
// and AI are kept as identifiers and resolved on every access, so removing
// any of them makes the reference resolve to nothing.
type Context struct {
	Menu menu.ID

	Username    string
	ProfileName string
	AIService   string

	Note      string
	TempDeck  *models.Deck
	FinalDeck *models.Deck

	users UserLookup
}

// New returns a logged-out context.
func New(users UserLookup) *Context {
	c := &Context{users: users}
	c.Reset()
	return c
}

// Reset returns the context to its logged-out defaults.
func (c *Context) Reset() {
	c.Menu = menu.Log
	c.Username = ""
	c.ProfileName = ""
	c.AIService = ""
	c.Note = ""
	c.TempDeck = nil
	c.FinalDeck = nil
}

// User resolves the current user.
func (c *Context) User() (*models.User, bool) {
	if c.Username == "" {
		return nil, false
	}
	u, err := c.users.Lookup(c.Username)
	if err != nil {
		return nil, false
	}
	return u, true
}

// Profile resolves the current profile of the current user.
func (c *Context) Profile() (*models.Profile, bool) {
	u, ok := c.User()
	if !ok || c.ProfileName == "" {
		return nil, false
	}
	p, err := u.Profile(c.ProfileName)
	if err != nil {
		return nil, false
	}
	return p, true
}

// AI resolves the current AI credential within the current profile.
func (c *Context) AI() (models.Credential, bool) {
	p, ok := c.Profile()
	if !ok || c.AIService == "" {
		return models.Credential{}, false
	}
	cred, err := p.Credential(c.AIService)
	if err != nil || !cred.AICapable() {
		return models.Credential{}, false
	}
	return cred, true
}

// State reports the facts the stage is derived from.
func (c *Context) State() State {
	_, hasProfile := c.Profile()
	_, hasAI := c.AI()
	return State{
		HasProfile: hasProfile,
		HasAI:      hasAI,
		HasNote:    c.Note != "",
		HasCards:   c.TempDeck != nil,
	}
}

// Stage derives the current stage.
func (c *Context) Stage() menu.Stage {
	return DeriveStage(c.State())
}

// Login makes username the current user with the given profile and that
// profile's default AI, and opens the main menu.
func (c *Context) Login(username, profile string) {
	c.Reset()
	c.Username = username
	c.SelectProfile(profile)
	c.Menu = menu.Main
}

// SelectProfile switches to profile and picks its default AI.
func (c *Context) SelectProfile(profile string) {
	c.ProfileName = profile
	c.AIService = ""
	if p, ok := c.Profile(); ok {
		c.AIService = p.DefaultAI
	}
}
