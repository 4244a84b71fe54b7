package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/ai"
	"github.com/atinyakov/fcgen/internal/console"
	"github.com/atinyakov/fcgen/internal/menu"
	"github.com/atinyakov/fcgen/internal/models"
	"github.com/atinyakov/fcgen/internal/notes"
	"github.com/atinyakov/fcgen/internal/secrets"
	"github.com/atinyakov/fcgen/internal/service"
	"github.com/atinyakov/fcgen/internal/session"
)

// ErrExit is returned by the exit action once the user confirmed it.
var ErrExit = errors.New("exit confirmed")

// CardGenerator produces flashcards from a note with an AI configuration.
type CardGenerator interface {
	Generate(ctx context.Context, cfg models.AIConfig, apiKey, note string) ([]models.Card, error)
}

// Options holds the collaborators of the application.
type Options struct {
	Console   *console.Console
	Directory *service.AccountDirectory
	Vault     *secrets.Vault
	Passwords service.PasswordValidator
	Notes     notes.Reader
	Generator CardGenerator
	ExportDir string
	Logger    *zap.Logger
}

// App owns the session and the action table of one interactive run.
type App struct {
	con       *console.Console
	dir       *service.AccountDirectory
	vault     *secrets.Vault
	passwords service.PasswordValidator
	notes     notes.Reader
	gen       CardGenerator
	exportDir string
	log       *zap.Logger
	now       func() time.Time

	Session    *session.Context
	dispatcher *Dispatcher
}

// New creates the application with every action registered.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reader := opts.Notes
	if reader == nil {
		reader = notes.TxtReader{}
	}
	a := &App{
		con:        opts.Console,
		dir:        opts.Directory,
		vault:      opts.Vault,
		passwords:  opts.Passwords,
		notes:      reader,
		gen:        opts.Generator,
		exportDir:  opts.ExportDir,
		log:        log,
		now:        time.Now,
		Session:    session.New(opts.Directory),
		dispatcher: NewDispatcher(),
	}
	a.register(a.dispatcher)
	return a
}

func (a *App) register(d *Dispatcher) {
	d.HandleFunc(menu.ActionLogin, a.login)
	d.HandleFunc(menu.ActionNewUser, a.newUser)
	d.HandleFunc(menu.ActionRemoveUser, a.removeUser)
	d.HandleFunc(menu.ActionExit, a.exit)
	d.HandleFunc(menu.ActionLogout, a.logout)

	d.Handle(menu.ActionMainMenu, goTo(menu.Main))
	d.Handle(menu.ActionProfileMenu, goTo(menu.Profile))
	d.Handle(menu.ActionAIMenu, goTo(menu.AI))
	d.Handle(menu.ActionSourceMenu, goTo(menu.Source))

	d.HandleFunc(menu.ActionNewProfile, a.newProfile)
	d.HandleFunc(menu.ActionSelectProfile, a.selectProfile)
	d.HandleFunc(menu.ActionEditProfile, a.editProfile)

	d.HandleFunc(menu.ActionSetupOpenAI, a.setupAI(ai.ProviderOpenAI))
	d.HandleFunc(menu.ActionSetupGemini, a.setupAI(ai.ProviderGemini))
	d.HandleFunc(menu.ActionSelectAI, a.selectAI)

	d.HandleFunc(menu.ActionSourceFile, a.sourceFile)
	d.HandleFunc(menu.ActionSourceNotion, a.sourceNotion)
	d.HandleFunc(menu.ActionGenerateCards, a.generateCards)
	d.HandleFunc(menu.ActionWorkWithCards, a.workWithCards)
	d.HandleFunc(menu.ActionExportCards, a.exportCards)
}

func goTo(id menu.ID) HandlerFunc {
	return func(_ context.Context, s *session.Context) error {
		s.Menu = id
		return nil
	}
}

// Run executes the loop until the user confirms exit, the input ends or a
// wiring error is found.
func (a *App) Run(ctx context.Context) error {
	if err := a.dispatcher.Validate(); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := a.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Step renders the current menu, reads one choice and dispatches it. It
// reports done when the session is over.
func (a *App) Step(ctx context.Context) (done bool, err error) {
	s := a.Session
	labels, err := menu.Render(s.Menu, s.Stage())
	if err != nil {
		return false, err
	}

	a.con.Title(a.header())
	a.con.Print(labels...)
	raw, err := a.con.Prompt(">>>>> ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			a.shutdown()
			return true, nil
		}
		return false, err
	}

	action, ok := menu.ResolveInput(raw, labels, s.Menu)
	if !ok {
		a.con.Error("Option %s is not available.", strings.TrimSpace(raw))
		return false, nil
	}

	err = a.dispatcher.Dispatch(ctx, action, s)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrExit):
		return true, nil
	case errors.Is(err, io.EOF):
		a.shutdown()
		return true, nil
	case errors.Is(err, menu.ErrWiring):
		a.log.Error("wiring error", zap.String("action", string(action)), zap.Error(err))
		return false, err
	default:
		a.log.Warn("action failed", zap.String("action", string(action)), zap.Error(err))
		a.con.Error("%v", err)
		return false, nil
	}
}

func (a *App) header() string {
	s := a.Session
	if s.Username == "" {
		return fmt.Sprintf("[%s]", s.Menu)
	}
	h := fmt.Sprintf("[%s] %s", s.Menu, s.Username)
	if _, ok := s.Profile(); ok {
		h += "/" + s.ProfileName
	}
	if cred, ok := s.AI(); ok {
		h += " (" + cred.ServiceName + ")"
	}
	return h
}

// shutdown ends the session without asking.
func (a *App) shutdown() {
	a.dir.LogoutAll()
	a.Session.Reset()
	a.log.Info("session ended")
}

// choose lists options and returns the index of the picked one. Blank or
// unmatched input reports ok=false.
func (a *App) choose(title string, options []string) (idx int, ok bool, err error) {
	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = fmt.Sprintf("%d. %s", i+1, o)
	}
	a.con.Print(title)
	a.con.Print(labels...)
	raw, err := a.con.Prompt(">>>>> ")
	if err != nil {
		return 0, false, err
	}
	input := strings.TrimSpace(raw)
	if input == "" {
		return 0, false, nil
	}
	for i, l := range labels {
		if strings.HasPrefix(l, input) {
			return i, true, nil
		}
	}
	a.con.Error("Option %s is not available.", input)
	return 0, false, nil
}
