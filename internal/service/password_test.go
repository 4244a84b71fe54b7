package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordValidator(t *testing.T) {
	bounded := DefaultPasswordValidator()
	unbounded := DefaultPasswordValidator()
	unbounded.MaxLength = 0

	tests := []struct {
		name      string
		validator PasswordValidator
		password  string
		wantMsg   string
	}{
		{"valid", bounded, "Password1!", ""},
		{"too short", unbounded, "Pw1!", "at least 6 characters"},
		{"too long", bounded, "Password12345!", "between 6 and 12 characters"},
		{"no number", bounded, "Password!", "at least one number"},
		{"no special", bounded, "Password1", "at least one special character"},
		{"no upper", bounded, "password1!", "one lowercase and one uppercase"},
		{"whitespace", bounded, "Password 1!", "cannot contain whitespaces"},
		{"long without bound", unbounded, "Password1234567890!", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.validator.Validate(tc.password)
			if tc.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrWeakPassword)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", hash)

	assert.True(t, h.Verify(hash, "Password1!"))
	assert.False(t, h.Verify(hash, "password1!"))
	assert.False(t, h.Verify("not a hash", "Password1!"))

	other, err := h.Hash("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}
