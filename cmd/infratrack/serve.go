package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/infratrack/internal/db"
	"github.com/vbonduro/infratrack/internal/service"
	"github.com/vbonduro/infratrack/internal/store"
	"github.com/vbonduro/infratrack/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Open the database, subscribe to table changes and serve the JSON API
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.cleanup()
	logger := a.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if a.cfg.AutoMigrate {
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
	}

	feed, closeFeed, err := newFeed(a.cfg, database, logger)
	if err != nil {
		return err
	}
	defer closeFeed()

	svc := service.NewInfrastructureService(
		store.NewLocationStore(database, feed),
		store.NewItemStore(database, feed),
		feed,
		logger,
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	server := web.NewServer(svc, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(a.cfg.ListenAddr) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
