package models

import (
	"encoding/json"
	"fmt"
)

// Kind tags the variant of a credential.
type Kind string

const (
	// KindAI marks credentials usable for flashcard generation.
	KindAI Kind = "AI"
)

// Payload is the kind-specific part of a credential.
type Payload interface {
	Kind() Kind
}

// AIConfig is the payload of AI credentials.
type AIConfig struct {
	// Provider is the provider id from the ai package ("openai", "gemini").
	Provider string `json:"provider"`
	// Model is the model name passed to the provider.
	Model string `json:"model"`
}

// Kind implements Payload.
func (AIConfig) Kind() Kind { return KindAI }

// Credential is a named external-service credential. The secret itself is
// not part of the credential; it lives in the secret store under SecretField.
type Credential struct {
	// ServiceName identifies the credential within its profile.
	ServiceName string
	// Kind tags Payload.
	Kind Kind
	// Payload holds the kind-specific configuration.
	Payload Payload
}

// NewAICredential builds an AI credential for the given provider and model.
func NewAICredential(service, provider, model string) Credential {
	return Credential{
		ServiceName: service,
		Kind:        KindAI,
		Payload:     AIConfig{Provider: provider, Model: model},
	}
}

// AICapable reports whether the credential can drive card generation.
func (c Credential) AICapable() bool {
	_, ok := c.AIConfig()
	return ok
}

// AIConfig returns the AI payload, if any.
func (c Credential) AIConfig() (AIConfig, bool) {
	if c.Kind != KindAI {
		return AIConfig{}, false
	}
	cfg, ok := c.Payload.(AIConfig)
	return cfg, ok
}

// SecretField returns the secret store field under which the API key of a
// credential owned by the given user and profile is kept.
func SecretField(username, profile string) string {
	return fmt.Sprintf("api_key:%s/%s", username, profile)
}

// Codec converts a kind payload to and from its persisted form.
type Codec struct {
	Encode func(Payload) (json.RawMessage, error)
	Decode func(json.RawMessage) (Payload, error)
}

var codecs = map[Kind]Codec{
	KindAI: JSONCodec[AIConfig](),
}

// RegisterKind installs the codec used to persist payloads of kind.
func RegisterKind(kind Kind, codec Codec) {
	codecs[kind] = codec
}

// CodecFor returns the codec registered for kind.
func CodecFor(kind Kind) (Codec, error) {
	c, ok := codecs[kind]
	if !ok {
		return Codec{}, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	return c, nil
}

// JSONCodec returns a codec storing T as a plain JSON object.
func JSONCodec[T Payload]() Codec {
	return Codec{
		Encode: func(p Payload) (json.RawMessage, error) {
			v, ok := p.(T)
			if !ok {
				return nil, fmt.Errorf("encode payload: unexpected type %T", p)
			}
			return json.Marshal(v)
		},
		Decode: func(raw json.RawMessage) (Payload, error) {
			var v T
			if len(raw) == 0 {
				return v, nil
			}
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("decode payload: %w", err)
			}
			return v, nil
		},
	}
}
