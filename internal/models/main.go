// Package models defines the core data structures for users, profiles,
// credentials and flashcards, together with the invariants that guard them.
package models

import (
	"fmt"
	"strings"
)

// DefaultProfileName is the profile every user gets on registration.
const DefaultProfileName = "main"

// User represents an application account owning one or more profiles.
type User struct {
	// Username is the unique, immutable login name.
	Username string
	// PasswordHash is the one-way hash of the user's password.
	PasswordHash string
	// Profiles holds the user's workspaces, unique by name.
	Profiles []*Profile
	// IsLoggedIn marks the single active session. It is never persisted.
	IsLoggedIn bool
}

// NewUser creates a user without profiles.
func NewUser(username, passwordHash string) *User {
	return &User{Username: username, PasswordHash: passwordHash}
}

// AddProfile appends a new empty profile with the given name.
func (u *User) AddProfile(name string) (*Profile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if u.HasProfile(name) {
		return nil, fmt.Errorf("profile %q for user %q: %w", name, u.Username, ErrDuplicateProfile)
	}
	p := NewProfile(name)
	u.Profiles = append(u.Profiles, p)
	return p, nil
}

// HasProfile reports whether the user owns a profile with the given name.
func (u *User) HasProfile(name string) bool {
	_, err := u.Profile(name)
	return err == nil
}

// Profile returns the profile with the given name.
func (u *User) Profile(name string) (*Profile, error) {
	for _, p := range u.Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile %q for user %q: %w", name, u.Username, ErrUnknownProfile)
}

// RemoveProfile deletes the profile with the given name.
func (u *User) RemoveProfile(name string) error {
	for i, p := range u.Profiles {
		if p.Name == name {
			u.Profiles = append(u.Profiles[:i], u.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile %q for user %q: %w", name, u.Username, ErrUnknownProfile)
}

// Profile is a named workspace holding external-service credentials.
type Profile struct {
	// Name identifies the profile within its user.
	Name string
	// Credentials are unique by service name.
	Credentials []Credential
	// DefaultAI is the service name of the default AI credential, or empty.
	DefaultAI string
}

// NewProfile creates an empty profile.
func NewProfile(name string) *Profile {
	return &Profile{Name: name}
}

// Credential returns the credential registered for the service.
func (p *Profile) Credential(service string) (Credential, error) {
	for _, c := range p.Credentials {
		if c.ServiceName == service {
			return c, nil
		}
	}
	return Credential{}, fmt.Errorf("service %q in profile %q: %w", service, p.Name, ErrUnknownCredential)
}

// HasCredential reports whether a credential for the service is present.
func (p *Profile) HasCredential(service string) bool {
	_, err := p.Credential(service)
	return err == nil
}

// AICredentials returns the AI-capable credentials in list order.
func (p *Profile) AICredentials() []Credential {
	var out []Credential
	for _, c := range p.Credentials {
		if c.AICapable() {
			out = append(out, c)
		}
	}
	return out
}

// AddCredential appends c. When c is AI capable and no default AI is set,
// c becomes the default and becameDefault is true. On failure the credential
// list is left unchanged.
func (p *Profile) AddCredential(c Credential) (becameDefault bool, err error) {
	if strings.TrimSpace(c.ServiceName) == "" {
		return false, ErrEmptyName
	}
	if p.HasCredential(c.ServiceName) {
		return false, fmt.Errorf("service %q in profile %q: %w", c.ServiceName, p.Name, ErrDuplicateService)
	}
	p.Credentials = append(p.Credentials, c)
	if c.AICapable() && p.DefaultAI == "" {
		p.DefaultAI = c.ServiceName
		return true, nil
	}
	return false, nil
}

// RemoveCredential deletes the credential for the service. If it was the
// default AI, the first remaining AI-capable credential becomes the default,
// or the default is cleared; defaultChanged reports that case.
func (p *Profile) RemoveCredential(service string) (defaultChanged bool, err error) {
	idx := -1
	for i, c := range p.Credentials {
		if c.ServiceName == service {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, fmt.Errorf("service %q in profile %q: %w", service, p.Name, ErrUnknownCredential)
	}
	p.Credentials = append(p.Credentials[:idx], p.Credentials[idx+1:]...)

	if p.DefaultAI != service {
		return false, nil
	}
	p.DefaultAI = ""
	if rest := p.AICredentials(); len(rest) > 0 {
		p.DefaultAI = rest[0].ServiceName
	}
	return true, nil
}

// SetDefaultAI makes the named AI-capable credential the default.
func (p *Profile) SetDefaultAI(service string) error {
	c, err := p.Credential(service)
	if err != nil {
		return err
	}
	if !c.AICapable() {
		return fmt.Errorf("service %q: %w", service, ErrNotAICapable)
	}
	p.DefaultAI = service
	return nil
}
