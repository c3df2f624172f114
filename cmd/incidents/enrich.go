package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"incident-pipeline/internal/enrich"
	"incident-pipeline/internal/storage"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add comment statistics to every imported incident",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd, "enrich.log")
	},
	RunE:     runEnrich,
	PostRunE: teardown,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ledger enrich.RunLedger
	db, err := storage.New(cfg.RunsDBPath)
	if err != nil {
		slog.Warn("Run ledger unavailable", "path", cfg.RunsDBPath, "error", err)
	} else {
		defer func() {
			_ = db.Close()
		}()
		if err := storage.Migrate(db); err != nil {
			slog.Warn("Run ledger migration failed", "error", err)
		} else {
			ledger = storage.NewRunRepo(db)
		}
	}

	engine, err := enrich.NewEngine(enrich.Config{
		InputPath:     cfg.IncidentsPath(),
		OutputPath:    cfg.EnrichedPath(),
		Workers:       cfg.EnrichWorkers,
		QueueCapacity: cfg.EnrichQueueCapacity,
		DrainTimeout:  cfg.EnrichDrainTimeout,
	}, enrich.NewCommentsClient(cfg.EnrichBaseURL, cfg.HTTPClientTimeout), ledger)
	if err != nil {
		return err
	}

	summary, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(context.WithoutCancel(ctx), "Enrichment summary",
		"run_id", summary.RunID, "ok", summary.OK, "fail", summary.Fail, "lost", summary.Lost,
		"elapsed", summary.Elapsed())
	return nil
}
