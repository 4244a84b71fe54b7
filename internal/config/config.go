// Package config provides the application options assembled from defaults,
// an optional JSON or YAML config file and environment variables.
// Command-line flags are applied on top by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPrompt is the instruction sent to the AI together with the note.
const DefaultPrompt = `You are a helpful assistant that creates study flashcards.
Read the note below and produce flashcards covering its key facts.
Answer only with a JSON array of objects with the string fields "front" and "back".`

// Options holds the configuration values for the application.
type Options struct {
	// DataDir is the base directory for every file the application writes.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Storage selects the account backend: "json" or "postgres".
	Storage string `json:"storage" yaml:"storage"`
	// UsersFile is the JSON account file used by the "json" backend.
	UsersFile string `json:"users_file" yaml:"users_file"`
	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// Vault selects the secret backend: "file", "sqlite" or "memory".
	Vault        string `json:"vault" yaml:"vault"`
	VaultPath    string `json:"vault_path" yaml:"vault_path"`
	VaultKeyFile string `json:"vault_key_file" yaml:"vault_key_file"`

	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
	// QueriesLog records AI requests and responses.
	QueriesLog string `json:"queries_log" yaml:"queries_log"`

	OpenAIBaseURL string `json:"openai_base_url" yaml:"openai_base_url"`
	// AITimeout accepts Go duration syntax ("90s", "2m").
	AITimeout string `json:"ai_timeout" yaml:"ai_timeout"`
	Prompt    string `json:"prompt" yaml:"prompt"`

	PasswordMinLength int    `json:"password_min_length" yaml:"password_min_length"`
	ExportDir         string `json:"export_dir" yaml:"export_dir"`

	// Config is the path to the config file.
	Config string `json:"-" yaml:"-"`
}

// Default returns the options used when nothing else is configured.
func Default() *Options {
	dataDir := ".fcgen"
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "fcgen")
	}
	return &Options{
		DataDir:           dataDir,
		Storage:           "json",
		Vault:             "file",
		LogLevel:          "info",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		AITimeout:         "90s",
		Prompt:            DefaultPrompt,
		PasswordMinLength: 6,
	}
}

// Parse returns the defaults overlaid with the config file at path (when it
// exists) and then with environment variables. The CONFIG environment
// variable replaces path.
func Parse(path string) (*Options, error) {
	options := Default()
	options.Config = path

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := options.loadFile(options.Config); err != nil {
			return nil, err
		}
	}

	if err := options.applyEnv(); err != nil {
		return nil, err
	}
	return options, nil
}

func (o *Options) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, o)
	default:
		err = json.Unmarshal(data, o)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file %s: %w", path, err)
	}
	return nil
}

func (o *Options) applyEnv() error {
	strs := map[string]*string{
		"FCGEN_DATA_DIR":       &o.DataDir,
		"FCGEN_STORAGE":        &o.Storage,
		"FCGEN_USERS_FILE":     &o.UsersFile,
		"DATABASE_DSN":         &o.DatabaseDSN,
		"FCGEN_VAULT":          &o.Vault,
		"FCGEN_VAULT_PATH":     &o.VaultPath,
		"FCGEN_VAULT_KEY_FILE": &o.VaultKeyFile,
		"FCGEN_LOG_LEVEL":      &o.LogLevel,
		"FCGEN_LOG_FILE":       &o.LogFile,
		"FCGEN_QUERIES_LOG":    &o.QueriesLog,
		"OPENAI_BASE_URL":      &o.OpenAIBaseURL,
		"FCGEN_AI_TIMEOUT":     &o.AITimeout,
		"FCGEN_EXPORT_DIR":     &o.ExportDir,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("FCGEN_PASSWORD_MIN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FCGEN_PASSWORD_MIN_LENGTH: %w", err)
		}
		o.PasswordMinLength = n
	}
	return nil
}

// Resolve fills the paths left empty from DataDir and checks the option
// values. Call it after flags were applied.
func (o *Options) Resolve() error {
	if o.DataDir == "" {
		return errors.New("data dir must be set")
	}
	orDefault := func(p *string, name string) {
		if *p == "" {
			*p = filepath.Join(o.DataDir, name)
		}
	}
	orDefault(&o.UsersFile, "users.json")
	orDefault(&o.VaultKeyFile, "vault.key")
	orDefault(&o.LogFile, "fcgen.log")
	orDefault(&o.QueriesLog, "queries.log")
	orDefault(&o.ExportDir, "exports")
	switch o.Vault {
	case "sqlite":
		orDefault(&o.VaultPath, "vault.db")
	default:
		orDefault(&o.VaultPath, "vault.json")
	}

	switch o.Storage {
	case "json":
	case "postgres":
		if o.DatabaseDSN == "" {
			return errors.New("postgres storage requires a database DSN")
		}
	default:
		return fmt.Errorf("unknown storage %q", o.Storage)
	}
	switch o.Vault {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown vault %q", o.Vault)
	}
	if o.PasswordMinLength < 1 {
		return fmt.Errorf("password min length must be positive, got %d", o.PasswordMinLength)
	}
	if _, err := o.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses AITimeout.
func (o *Options) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(o.AITimeout)
	if err != nil {
		return 0, fmt.Errorf("ai timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ai timeout must be positive, got %s", d)
	}
	return d, nil
}
