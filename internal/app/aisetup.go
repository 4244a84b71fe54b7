package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/ai"
	"github.com/atinyakov/fcgen/internal/menu"
	"github.com/atinyakov/fcgen/internal/models"
	"github.com/atinyakov/fcgen/internal/session"
)

// setupAI configures the provider as a credential of the current profile.
// The key is validated before it is stored and a blank key cancels.
func (a *App) setupAI(providerID string) func(context.Context, *session.Context) error {
	return func(ctx context.Context, s *session.Context) error {
		provider, err := ai.LookupProvider(providerID)
		if err != nil {
			return err
		}
		p, ok := a.currentProfile(s)
		if !ok {
			return nil
		}
		if p.HasCredential(provider.ServiceName) {
			a.con.Error("%s is already configured in profile %s.", provider.ServiceName, p.Name)
			return nil
		}

		i, ok, err := a.choose(fmt.Sprintf("Select %s model:", provider.ServiceName), provider.Models)
		if err != nil || !ok {
			return err
		}
		model := provider.Models[i]

		var key string
		for {
			key, err = a.con.Password(fmt.Sprintf("Enter your %s API key (leave blank to cancel): ", provider.ServiceName))
			if err != nil {
				return err
			}
			key = strings.TrimSpace(key)
			if key == "" {
				a.con.Info("%s setup cancelled.", provider.ServiceName)
				return nil
			}
			if err := provider.ValidateKey(key); err != nil {
				a.con.Error("%v", err)
				continue
			}
			break
		}

		field := models.SecretField(s.Username, s.ProfileName)
		if err := a.vault.SetSecret(ctx, provider.ServiceName, field, key); err != nil {
			return fmt.Errorf("store API key: %w", err)
		}

		var becameDefault bool
		err = a.dir.Update(ctx, s.Username, func(u *models.User) error {
			p, err := u.Profile(s.ProfileName)
			if err != nil {
				return err
			}
			becameDefault, err = p.AddCredential(models.NewAICredential(provider.ServiceName, provider.ID, model))
			return err
		})
		if err != nil {
			if derr := a.vault.DeleteSecret(ctx, provider.ServiceName, field); derr != nil {
				a.log.Warn("delete secret", zap.String("service", provider.ServiceName), zap.Error(derr))
			}
			if errors.Is(err, models.ErrDuplicateService) {
				a.con.Error("%s is already configured in profile %s.", provider.ServiceName, s.ProfileName)
				return nil
			}
			return fmt.Errorf("add credential: %w", err)
		}

		a.log.Info("credential added",
			zap.String("username", s.Username),
			zap.String("profile", s.ProfileName),
			zap.String("service", provider.ServiceName),
			zap.String("model", model),
		)
		a.con.Info("%s configured with model %s.", provider.ServiceName, model)
		if becameDefault {
			a.log.Info("default AI set", zap.String("profile", s.ProfileName), zap.String("service", provider.ServiceName))
			a.con.Info("%s is now the default AI of profile %s.", provider.ServiceName, s.ProfileName)
		}
		if _, ok := s.AI(); !ok {
			s.AIService = provider.ServiceName
		}
		return nil
	}
}

func (a *App) selectAI(_ context.Context, s *session.Context) error {
	p, ok := a.currentProfile(s)
	if !ok {
		return nil
	}
	services := serviceNames(p.AICredentials())
	if len(services) == 0 {
		a.con.Error("There are no AI credentials in profile %s. Set one up first.", p.Name)
		return nil
	}

	i, ok, err := a.choose("Select AI:", services)
	if err != nil || !ok {
		return err
	}
	s.AIService = services[i]
	s.Menu = menu.Main
	a.con.Info("Using %s.", services[i])
	return nil
}
