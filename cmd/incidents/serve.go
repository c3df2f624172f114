package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"incident-pipeline/internal/http"
	"incident-pipeline/internal/service"
	"incident-pipeline/internal/storage"
	"incident-pipeline/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve incident lookup, creation and search over HTTP",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd, "server.log")
	},
	RunE:     runServe,
	PostRunE: teardown,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, report, err := store.Open(store.Options{
		Sources:    []string{cfg.EnrichedPath(), cfg.LocalPath()},
		AppendPath: cfg.LocalPath(),
	})
	if err != nil {
		return fmt.Errorf("failed to load incidents: %w", err)
	}
	defer func() {
		_ = st.Close()
	}()
	slog.Info("Incidents loaded",
		"files", report.Files, "loaded", report.Loaded, "skipped", report.Skipped,
		"incidents", st.Len(), "next_id", st.NextID())

	deps := &http.Deps{IncidentService: service.NewIncidentService(st)}

	db, err := storage.New(cfg.RunsDBPath)
	if err != nil {
		slog.Warn("Run ledger unavailable; /runs disabled", "path", cfg.RunsDBPath, "error", err)
	} else {
		defer func() {
			_ = db.Close()
		}()
		if err := storage.Migrate(db); err != nil {
			slog.Warn("Run ledger migration failed; /runs disabled", "error", err)
		} else {
			deps.Runs = storage.NewRunRepo(db)
		}
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(deps),
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed to start: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	slog.Info("API server stopped")
	return nil
}
