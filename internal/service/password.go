package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned when a password does not satisfy the policy.
var ErrWeakPassword = errors.New("weak password")

// PasswordHasher turns passwords into one-way hashes and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash.
	Verify(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordValidator describes the password policy applied on registration.
type PasswordValidator struct {
	MinLength int
	// MaxLength of zero disables the upper bound.
	MaxLength         int
	RequireDigit      bool
	RequireSpecial    bool
	RequireUpperLower bool
}

// DefaultPasswordValidator returns the policy used when none is configured.
func DefaultPasswordValidator() PasswordValidator {
	return PasswordValidator{
		MinLength:         6,
		MaxLength:         12,
		RequireDigit:      true,
		RequireSpecial:    true,
		RequireUpperLower: true,
	}
}

// Validate returns an error wrapping ErrWeakPassword that names the first
// violated rule.
func (v PasswordValidator) Validate(password string) error {
	n := len([]rune(password))
	switch {
	case v.MaxLength > 0 && (n < v.MinLength || n > v.MaxLength):
		return fmt.Errorf("%w: password length have to be between %d and %d characters", ErrWeakPassword, v.MinLength, v.MaxLength)
	case n < v.MinLength:
		return fmt.Errorf("%w: password length should be at least %d characters", ErrWeakPassword, v.MinLength)
	}

	var digit, special, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case v.RequireDigit && !digit:
		return fmt.Errorf("%w: password must contain at least one number", ErrWeakPassword)
	case v.RequireSpecial && !special:
		return fmt.Errorf("%w: password must contain at least one special character", ErrWeakPassword)
	case v.RequireUpperLower && !(upper && lower):
		return fmt.Errorf("%w: password must contain at least one lowercase and one uppercase letter", ErrWeakPassword)
	case strings.IndexFunc(password, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: password cannot contain whitespaces", ErrWeakPassword)
	}
	return nil
}
