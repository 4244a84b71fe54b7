// Package app wires menu actions to their handlers and runs the interactive
// loop: render the current menu, read a choice, dispatch the action.
package app

import (
	"context"
	"fmt"

	"github.com/atinyakov/fcgen/internal/menu"
	"github.com/atinyakov/fcgen/internal/session"
)

// Handler executes one menu action against the session.
type Handler interface {
	Execute(ctx context.Context, s *session.Context) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, s *session.Context) error

func (f HandlerFunc) Execute(ctx context.Context, s *session.Context) error {
	return f(ctx, s)
}

// Dispatcher maps actions to handlers.
type Dispatcher struct {
	handlers map[menu.Action]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[menu.Action]Handler)}
}

// Handle registers h for action, replacing any previous handler.
func (d *Dispatcher) Handle(action menu.Action, h Handler) {
	d.handlers[action] = h
}

// HandleFunc registers f for action.
func (d *Dispatcher) HandleFunc(action menu.Action, f func(ctx context.Context, s *session.Context) error) {
	d.Handle(action, HandlerFunc(f))
}

// Dispatch runs the handler of action. An action some menu lists but no
// handler serves is a menu.ErrWiring; an action no menu knows is
// menu.ErrUnknownAction.
func (d *Dispatcher) Dispatch(ctx context.Context, action menu.Action, s *session.Context) error {
	h, ok := d.handlers[action]
	if !ok {
		if menu.Referenced(action) {
			return fmt.Errorf("action %q has no handler: %w", action, menu.ErrWiring)
		}
		return fmt.Errorf("action %q: %w", action, menu.ErrUnknownAction)
	}
	return h.Execute(ctx, s)
}

// Validate checks that every action listed by a menu has a handler.
func (d *Dispatcher) Validate() error {
	for _, a := range menu.Actions() {
		if _, ok := d.handlers[a]; !ok {
			return fmt.Errorf("action %q has no handler: %w", a, menu.ErrWiring)
		}
	}
	return nil
}
