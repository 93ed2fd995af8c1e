// Package logging provides structured logging utilities.
package logging

import (
	"log/slog"
	"os"

	"github.com/harishram/fintrack-backend/internal/infrastructure/config"
)

// NewLogger creates a structured logger based on config
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// NewLoggerWithComponent creates a logger scoped to a component name, useful
// when injecting loggers into subsystems.
func NewLoggerWithComponent(cfg config.LoggingConfig, component string) *slog.Logger {
	return NewLogger(cfg).With("component", component)
}
