package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Build version: N/A")
	assert.Contains(t, out.String(), "Build date: N/A")
}

func TestLoadOptions_FlagsOverride(t *testing.T) {
	t.Setenv("CONFIG", "")
	dir := t.TempDir()
	t.Setenv("FCGEN_STORAGE", "json")

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{
		"--data-dir", dir,
		"--storage", "postgres",
		"-d", "postgres://localhost/fcgen",
		"--ai-timeout", "30s",
	}))

	fv := flagValues{dataDir: dir, storage: "postgres", databaseDSN: "postgres://localhost/fcgen", aiTimeout: "30s"}
	options, err := loadOptions(cmd, fv)
	require.NoError(t, err)
	assert.Equal(t, "postgres", options.Storage)
	assert.Equal(t, "postgres://localhost/fcgen", options.DatabaseDSN)
	assert.Equal(t, "30s", options.AITimeout)
	assert.Equal(t, filepath.Join(dir, "users.json"), options.UsersFile)
	assert.Equal(t, "file", options.Vault, "unset flags keep lower layers")
}

func TestLoadOptions_Invalid(t *testing.T) {
	t.Setenv("CONFIG", "")
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--vault", "keyring"}))

	_, err := loadOptions(cmd, flagValues{vault: "keyring", dataDir: t.TempDir()})
	require.Error(t, err)
}

func TestRun_EndToEndWithJSONStorage(t *testing.T) {
	t.Setenv("CONFIG", "")
	dir := t.TempDir()
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--data-dir", dir}))
	options, err := loadOptions(cmd, flagValues{dataDir: dir})
	require.NoError(t, err)

	input := strings.NewReader("2\nalice\nPassword1!\nPassword1!\n0\ny\n")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), options, input, &out))

	assert.Contains(t, out.String(), "User alice created.")
	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"username": "alice"`)
	_, err = os.Stat(filepath.Join(dir, "vault.key"))
	require.NoError(t, err)
}
