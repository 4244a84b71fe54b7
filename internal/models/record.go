package models

import (
	"encoding/json"
	"fmt"
)

// UserRecord is the persisted form of a User.
type UserRecord struct {
	Username     string          `json:"username"`
	PasswordHash string          `json:"password_hash"`
	Profiles     []ProfileRecord `json:"profiles"`
}

// ProfileRecord is the persisted form of a Profile.
type ProfileRecord struct {
	Name        string             `json:"name"`
	Credentials []CredentialRecord `json:"credentials"`
	DefaultAI   string             `json:"default_ai,omitempty"`
}

// CredentialRecord is the persisted form of a Credential. Secrets are never
// part of it.
type CredentialRecord struct {
	ServiceName string          `json:"service_name"`
	Kind        Kind            `json:"kind"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// ToRecord serializes u into its persisted form.
func ToRecord(u *User) (UserRecord, error) {
	rec := UserRecord{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Profiles:     make([]ProfileRecord, 0, len(u.Profiles)),
	}
	for _, p := range u.Profiles {
		pr := ProfileRecord{
			Name:        p.Name,
			Credentials: make([]CredentialRecord, 0, len(p.Credentials)),
			DefaultAI:   p.DefaultAI,
		}
		for _, c := range p.Credentials {
			codec, err := CodecFor(c.Kind)
			if err != nil {
				return UserRecord{}, fmt.Errorf("user %q: %w", u.Username, err)
			}
			raw, err := codec.Encode(c.Payload)
			if err != nil {
				return UserRecord{}, fmt.Errorf("user %q service %q: %w", u.Username, c.ServiceName, err)
			}
			pr.Credentials = append(pr.Credentials, CredentialRecord{
				ServiceName: c.ServiceName,
				Kind:        c.Kind,
				Config:      raw,
			})
		}
		rec.Profiles = append(rec.Profiles, pr)
	}
	return rec, nil
}

// FromRecord rebuilds a User from its persisted form. A default AI that does
// not reference a present AI credential is re-selected the same way removal
// does.
func FromRecord(rec UserRecord) (*User, error) {
	u := NewUser(rec.Username, rec.PasswordHash)
	for _, pr := range rec.Profiles {
		p, err := u.AddProfile(pr.Name)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", rec.Username, err)
		}
		for _, cr := range pr.Credentials {
			codec, err := CodecFor(cr.Kind)
			if err != nil {
				return nil, fmt.Errorf("user %q: %w", rec.Username, err)
			}
			payload, err := codec.Decode(cr.Config)
			if err != nil {
				return nil, fmt.Errorf("user %q service %q: %w", rec.Username, cr.ServiceName, err)
			}
			c := Credential{ServiceName: cr.ServiceName, Kind: cr.Kind, Payload: payload}
			if _, err := p.AddCredential(c); err != nil {
				return nil, fmt.Errorf("user %q: %w", rec.Username, err)
			}
		}
		p.DefaultAI = ""
		if err := p.SetDefaultAI(pr.DefaultAI); err != nil {
			if ai := p.AICredentials(); len(ai) > 0 {
				p.DefaultAI = ai[0].ServiceName
			}
		}
	}
	return u, nil
}
