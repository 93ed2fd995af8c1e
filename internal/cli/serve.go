// Package cli contains the command line entrypoints.
package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harishram/fintrack-backend/internal/api"
	"github.com/harishram/fintrack-backend/internal/application/service"
	"github.com/harishram/fintrack-backend/internal/infrastructure/config"
	"github.com/harishram/fintrack-backend/internal/infrastructure/logging"
	"github.com/harishram/fintrack-backend/internal/infrastructure/storage"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	DBPath  string
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&flags.DBPath, "db", "", "Database path (overrides config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunServe runs the API server until a shutdown signal arrives.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithComponent(loggingCfg, "api")

	dbPath := cfg.Storage.DatabasePath
	if flags.DBPath != "" {
		dbPath = flags.DBPath
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	apiCfg := api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}

	svc := service.NewTransactionService(store, logger)
	server := api.NewServer(apiCfg, svc, logger)

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
