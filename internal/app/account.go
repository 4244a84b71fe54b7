package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/menu"
	"github.com/atinyakov/fcgen/internal/models"
	"github.com/atinyakov/fcgen/internal/session"
)

func (a *App) login(_ context.Context, s *session.Context) error {
	username, err := a.con.Prompt("Username: ")
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	password, err := a.con.Password("Password: ")
	if err != nil {
		return err
	}

	u, err := a.dir.Authenticate(username, password)
	switch {
	case errors.Is(err, models.ErrUnknownUser):
		a.con.Error("User %s does not exist.", username)
		return nil
	case errors.Is(err, models.ErrWrongPassword):
		a.con.Error("Wrong password.")
		return nil
	case err != nil:
		return err
	}

	profile := ""
	if u.HasProfile(models.DefaultProfileName) {
		profile = models.DefaultProfileName
	} else if len(u.Profiles) > 0 {
		profile = u.Profiles[0].Name
	}
	s.Login(u.Username, profile)
	a.con.Info("Logged in as %s.", u.Username)
	return nil
}

func (a *App) newUser(ctx context.Context, _ *session.Context) error {
	username, err := a.con.Prompt("New username: ")
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		a.con.Error("Username cannot be empty.")
		return nil
	}
	if a.dir.Exists(username) {
		a.con.Error("User %s already exists.", username)
		return nil
	}

	password, err := a.con.Password("Password: ")
	if err != nil {
		return err
	}
	if err := a.passwords.Validate(password); err != nil {
		a.con.Error("%v", err)
		return nil
	}
	repeat, err := a.con.Password("Repeat password: ")
	if err != nil {
		return err
	}
	if repeat != password {
		a.con.Error("Passwords do not match.")
		return nil
	}

	if _, err := a.dir.Register(ctx, username, password); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			a.con.Error("User %s already exists.", username)
			return nil
		}
		return fmt.Errorf("register user: %w", err)
	}
	a.con.Info("User %s created.", username)
	return nil
}

func (a *App) removeUser(ctx context.Context, _ *session.Context) error {
	username, err := a.con.Prompt("Username to remove: ")
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	password, err := a.con.Password("Password: ")
	if err != nil {
		return err
	}

	u, err := a.dir.VerifyPassword(username, password)
	switch {
	case errors.Is(err, models.ErrUnknownUser):
		a.con.Error("User %s does not exist.", username)
		return nil
	case errors.Is(err, models.ErrWrongPassword):
		a.con.Error("Wrong password.")
		return nil
	case err != nil:
		return err
	}

	yes, ok, err := a.con.Confirm(fmt.Sprintf("Remove user %s and all of their profiles?", username))
	if err != nil {
		return err
	}
	if !ok || !yes {
		a.con.Info("User %s kept.", username)
		return nil
	}

	type secretRef struct{ service, field string }
	var refs []secretRef
	for _, p := range u.Profiles {
		for _, c := range p.Credentials {
			refs = append(refs, secretRef{c.ServiceName, models.SecretField(u.Username, p.Name)})
		}
	}

	if err := a.dir.Remove(ctx, username); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	for _, r := range refs {
		if err := a.vault.DeleteSecret(ctx, r.service, r.field); err != nil {
			a.log.Warn("delete secret", zap.String("service", r.service), zap.Error(err))
		}
	}
	a.con.Info("User %s removed.", username)
	return nil
}

func (a *App) exit(_ context.Context, _ *session.Context) error {
	yes, ok, err := a.con.Confirm("Are you sure you want quit?")
	if err != nil {
		return err
	}
	if !ok {
		a.con.Error(`Invalid answer, select "Y" or "N".`)
		return nil
	}
	if !yes {
		return nil
	}
	a.shutdown()
	a.con.Info("Bye")
	return ErrExit
}

func (a *App) logout(_ context.Context, s *session.Context) error {
	a.dir.LogoutAll()
	username := s.Username
	s.Reset()
	a.log.Info("user logged out", zap.String("username", username))
	a.con.Info("Logged out.")
	return nil
}

// currentProfile resolves the profile actions operate on and reports when
// there is none.
func (a *App) currentProfile(s *session.Context) (*models.Profile, bool) {
	p, ok := s.Profile()
	if !ok {
		a.con.Error("Select a profile first.")
		s.Menu = menu.Profile
	}
	return p, ok
}
