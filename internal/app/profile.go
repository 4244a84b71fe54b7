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

func (a *App) newProfile(ctx context.Context, s *session.Context) error {
	name, err := a.con.Prompt("Profile name: ")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		a.con.Error("Profile name cannot be empty.")
		return nil
	}

	err = a.dir.Update(ctx, s.Username, func(u *models.User) error {
		_, err := u.AddProfile(name)
		return err
	})
	if errors.Is(err, models.ErrDuplicateProfile) {
		a.con.Error("Profile %s already exists.", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("add profile: %w", err)
	}
	a.log.Info("profile added", zap.String("username", s.Username), zap.String("profile", name))
	a.con.Info("Profile %s created.", name)
	return nil
}

func (a *App) selectProfile(_ context.Context, s *session.Context) error {
	u, ok := s.User()
	if !ok {
		return fmt.Errorf("no user logged in: %w", models.ErrUnknownUser)
	}
	if len(u.Profiles) == 0 {
		a.con.Error("There are no profiles. Add one first.")
		return nil
	}

	names := make([]string, len(u.Profiles))
	for i, p := range u.Profiles {
		names[i] = p.Name
	}
	i, ok, err := a.choose("Select profile:", names)
	if err != nil || !ok {
		return err
	}

	s.SelectProfile(names[i])
	s.Menu = menu.Main
	a.con.Info("Profile %s selected.", names[i])
	if s.AIService != "" {
		a.con.Info("Using %s.", s.AIService)
	}
	return nil
}

func (a *App) editProfile(ctx context.Context, s *session.Context) error {
	p, ok := a.currentProfile(s)
	if !ok {
		return nil
	}

	a.con.Title(fmt.Sprintf("Profile %s", p.Name))
	if len(p.Credentials) == 0 {
		a.con.Print("No credentials configured.")
	}
	for _, c := range p.Credentials {
		line := "- " + c.ServiceName
		if cfg, ok := c.AIConfig(); ok {
			line += fmt.Sprintf(" (%s, %s)", cfg.Provider, cfg.Model)
		}
		if c.ServiceName == p.DefaultAI {
			line += " [default]"
		}
		a.con.Print(line)
	}

	i, ok, err := a.choose("What you want to do?", []string{"Set default AI", "Remove credential", "Remove profile", "Back"})
	if err != nil || !ok {
		return err
	}
	switch i {
	case 0:
		return a.setDefaultAI(ctx, s, p)
	case 1:
		return a.removeCredential(ctx, s, p)
	case 2:
		return a.removeProfile(ctx, s, p)
	}
	return nil
}

func (a *App) setDefaultAI(ctx context.Context, s *session.Context, p *models.Profile) error {
	services := serviceNames(p.AICredentials())
	if len(services) == 0 {
		a.con.Error("There are no AI credentials in profile %s.", p.Name)
		return nil
	}
	i, ok, err := a.choose("Select default AI:", services)
	if err != nil || !ok {
		return err
	}

	err = a.dir.Update(ctx, s.Username, func(u *models.User) error {
		p, err := u.Profile(s.ProfileName)
		if err != nil {
			return err
		}
		return p.SetDefaultAI(services[i])
	})
	if err != nil {
		return fmt.Errorf("set default AI: %w", err)
	}
	a.log.Info("default AI set", zap.String("profile", s.ProfileName), zap.String("service", services[i]))
	a.con.Info("%s is now the default AI of profile %s.", services[i], s.ProfileName)
	return nil
}

func (a *App) removeCredential(ctx context.Context, s *session.Context, p *models.Profile) error {
	services := serviceNames(p.Credentials)
	if len(services) == 0 {
		a.con.Error("There are no credentials in profile %s.", p.Name)
		return nil
	}
	i, ok, err := a.choose("Select credential to remove:", services)
	if err != nil || !ok {
		return err
	}
	service := services[i]

	var (
		defaultChanged bool
		newDefault     string
	)
	err = a.dir.Update(ctx, s.Username, func(u *models.User) error {
		p, err := u.Profile(s.ProfileName)
		if err != nil {
			return err
		}
		defaultChanged, err = p.RemoveCredential(service)
		newDefault = p.DefaultAI
		return err
	})
	if err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	if err := a.vault.DeleteSecret(ctx, service, models.SecretField(s.Username, s.ProfileName)); err != nil {
		a.log.Warn("delete secret", zap.String("service", service), zap.Error(err))
	}
	if s.AIService == service {
		s.AIService = newDefault
	}

	a.con.Info("Credential %s removed.", service)
	if defaultChanged {
		a.log.Info("default AI changed", zap.String("profile", s.ProfileName), zap.String("service", newDefault))
		if newDefault == "" {
			a.con.Info("Profile %s has no default AI now.", s.ProfileName)
		} else {
			a.con.Info("%s is now the default AI of profile %s.", newDefault, s.ProfileName)
		}
	}
	return nil
}

func (a *App) removeProfile(ctx context.Context, s *session.Context, p *models.Profile) error {
	yes, ok, err := a.con.Confirm(fmt.Sprintf("Remove profile %s?", p.Name))
	if err != nil {
		return err
	}
	if !ok || !yes {
		return nil
	}

	name := p.Name
	services := serviceNames(p.Credentials)
	err = a.dir.Update(ctx, s.Username, func(u *models.User) error {
		return u.RemoveProfile(name)
	})
	if err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}
	field := models.SecretField(s.Username, name)
	for _, service := range services {
		if err := a.vault.DeleteSecret(ctx, service, field); err != nil {
			a.log.Warn("delete secret", zap.String("service", service), zap.Error(err))
		}
	}

	s.ProfileName = ""
	s.AIService = ""
	s.Menu = menu.Main
	a.log.Info("profile removed", zap.String("username", s.Username), zap.String("profile", name))
	a.con.Info("Profile %s removed.", name)
	return nil
}

func serviceNames(creds []models.Credential) []string {
	names := make([]string, len(creds))
	for i, c := range creds {
		names[i] = c.ServiceName
	}
	return names
}
