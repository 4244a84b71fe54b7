// Package main starts the fcgen interactive shell: it loads the
// configuration, sets up logging, the account storage, the secret vault and
// the AI generator, and runs the menu loop on the terminal.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/ai"
	"github.com/atinyakov/fcgen/internal/app"
	"github.com/atinyakov/fcgen/internal/config"
	"github.com/atinyakov/fcgen/internal/console"
	"github.com/atinyakov/fcgen/internal/db"
	"github.com/atinyakov/fcgen/internal/logger"
	"github.com/atinyakov/fcgen/internal/notes"
	"github.com/atinyakov/fcgen/internal/repository"
	"github.com/atinyakov/fcgen/internal/secrets"
	"github.com/atinyakov/fcgen/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

type flagValues struct {
	config      string
	dataDir     string
	storage     string
	databaseDSN string
	vault       string
	logLevel    string
	openAIURL   string
	aiTimeout   string
	exportDir   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var fv flagValues

	root := &cobra.Command{
		Use:           "fcgen",
		Short:         "Generate flashcards from your notes with an AI",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := loadOptions(cmd, fv)
			if err != nil {
				return err
			}
			return run(cmd.Context(), options, os.Stdin, cmd.OutOrStdout())
		},
	}

	f := root.Flags()
	f.StringVarP(&fv.config, "config", "c", "", "path to a JSON or YAML config file")
	f.StringVar(&fv.dataDir, "data-dir", "", "directory for accounts, secrets, logs and exports")
	f.StringVar(&fv.storage, "storage", "", "account storage: json or postgres")
	f.StringVarP(&fv.databaseDSN, "database-dsn", "d", "", "PostgreSQL connection string")
	f.StringVar(&fv.vault, "vault", "", "secret storage: file, sqlite or memory")
	f.StringVar(&fv.logLevel, "log-level", "", "log level")
	f.StringVar(&fv.openAIURL, "openai-base-url", "", "OpenAI compatible API base URL")
	f.StringVar(&fv.aiTimeout, "ai-timeout", "", "timeout of one AI request, e.g. 90s")
	f.StringVar(&fv.exportDir, "export-dir", "", "directory exported decks are written to")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\nBuild date: %s\n",
				cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	})
	return root
}

// loadOptions merges defaults, config file, environment and the flags the
// user set explicitly.
func loadOptions(cmd *cobra.Command, fv flagValues) (*config.Options, error) {
	_ = godotenv.Load()

	options, err := config.Parse(fv.config)
	if err != nil {
		return nil, err
	}

	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("data-dir", &options.DataDir, fv.dataDir)
	set("storage", &options.Storage, fv.storage)
	set("database-dsn", &options.DatabaseDSN, fv.databaseDSN)
	set("vault", &options.Vault, fv.vault)
	set("log-level", &options.LogLevel, fv.logLevel)
	set("openai-base-url", &options.OpenAIBaseURL, fv.openAIURL)
	set("ai-timeout", &options.AITimeout, fv.aiTimeout)
	set("export-dir", &options.ExportDir, fv.exportDir)

	if err := options.Resolve(); err != nil {
		return nil, err
	}
	return options, nil
}

func run(ctx context.Context, options *config.Options, in io.Reader, out io.Writer) error {
	log := logger.New()
	if err := log.Init(options.LogLevel, options.LogFile); err != nil {
		return err
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	queries, err := logger.Queries(options.QueriesLog)
	if err != nil {
		return err
	}
	defer func() { _ = queries.Sync() }()

	repo, closeRepo, err := openRepository(options)
	if err != nil {
		zapLogger.Error("cannot open account storage", zap.Error(err))
		return err
	}
	defer closeRepo()

	key, err := secrets.LoadOrCreateKey(options.VaultKeyFile)
	if err != nil {
		return err
	}
	store, err := secrets.Open(options.Vault, options.VaultPath, key)
	if err != nil {
		zapLogger.Error("cannot open vault", zap.Error(err))
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	dir := service.NewAccountDirectory(repo, service.BcryptHasher{}, zapLogger)
	if err := dir.Load(ctx); err != nil {
		zapLogger.Error("cannot load users", zap.Error(err))
		return err
	}

	timeout, err := options.Timeout()
	if err != nil {
		return err
	}
	generator := ai.NewGenerator(ai.NewClientFactory(options.OpenAIBaseURL, timeout), options.Prompt, timeout, queries)

	passwords := service.DefaultPasswordValidator()
	passwords.MinLength = options.PasswordMinLength
	if passwords.MaxLength < passwords.MinLength {
		passwords.MaxLength = 0
	}

	zapLogger.Info("starting fcgen",
		zap.String("version", cmp.Or(version, "N/A")),
		zap.String("storage", options.Storage),
		zap.String("vault", options.Vault),
	)

	a := app.New(app.Options{
		Console:   console.New(in, out),
		Directory: dir,
		Vault:     secrets.NewVault(store),
		Passwords: passwords,
		Notes:     notes.TxtReader{},
		Generator: generator,
		ExportDir: options.ExportDir,
		Logger:    zapLogger,
	})
	return a.Run(ctx)
}

func openRepository(options *config.Options) (service.UserRepository, func(), error) {
	switch options.Storage {
	case "postgres":
		conn, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresUserRepository(conn), func() { _ = conn.Close() }, nil
	default:
		return repository.NewJSONFileRepository(options.UsersFile), func() {}, nil
	}
}
