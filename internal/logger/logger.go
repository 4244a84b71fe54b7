// Package logger wraps zap with the application's output settings.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Logger holds the application logger. It is a no-op logger until Init is
// called.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a JSON logger at level writing to path. An empty path writes
// to stderr.
func (l *Logger) Init(level, path string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zl, err := build(lvl, path)
	if err != nil {
		return err
	}
	l.Log = zl
	return nil
}

// Queries builds the logger recording every AI request and response. It
// writes to its own file so prompts and answers stay out of the application
// log.
func Queries(path string) (*zap.Logger, error) {
	zl, err := build(zap.NewAtomicLevelAt(zap.InfoLevel), path)
	if err != nil {
		return nil, err
	}
	return zl.Named("queries"), nil
}

func build(lvl zap.AtomicLevel, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Sampling = nil
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return zl, nil
}
