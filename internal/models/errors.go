package models

import "errors"

// Domain failures returned by the account, profile, credential and deck
// operations. Callers match them with errors.Is; the message shown to the
// user is composed by the calling action.
var (
	// ErrDuplicateUser is returned when registering a username that is taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUnknownUser is returned when a username is not in the directory.
	ErrUnknownUser = errors.New("user does not exist")
	// ErrWrongPassword is returned when the password hash check fails.
	ErrWrongPassword = errors.New("invalid password")
	// ErrDuplicateProfile is returned when a profile name is already used by the user.
	ErrDuplicateProfile = errors.New("profile already exists")
	// ErrUnknownProfile is returned when the user has no profile with the given name.
	ErrUnknownProfile = errors.New("profile does not exist")
	// ErrEmptyName is returned for blank user or profile names.
	ErrEmptyName = errors.New("name can't be empty")
	// ErrDuplicateService is returned when the profile already holds a credential for the service.
	ErrDuplicateService = errors.New("credentials for service already exist")
	// ErrUnknownCredential is returned when the profile has no credential for the service.
	ErrUnknownCredential = errors.New("credentials not found")
	// ErrNotAICapable is returned when a non-AI credential is used where an AI one is required.
	ErrNotAICapable = errors.New("credentials are not AI capable")
	// ErrUnknownKind is returned when a credential kind has no registered codec.
	ErrUnknownKind = errors.New("unknown credential kind")
	// ErrSecretNotFound is returned when a secret was never stored.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrInvalidSecret is returned when a secret fails its format check.
	ErrInvalidSecret = errors.New("invalid secret format")
	// ErrCardNotFound is returned when removing a card that is not in the deck.
	ErrCardNotFound = errors.New("card not found in deck")
)
