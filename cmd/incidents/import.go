package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"incident-pipeline/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch incident reports into the storage directory",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd, "import.log")
	},
	RunE:     runImport,
	PostRunE: teardown,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	im := importer.New(cfg.EnrichBaseURL, cfg.HTTPClientTimeout)

	slog.Info("Starting import", "base_url", cfg.EnrichBaseURL, "limit", cfg.ImportLimit)
	report, err := im.Import(ctx, cfg.ImportLimit, cfg.IncidentsPath())
	if err != nil {
		slog.Error("Import failed", "error", err)
		return err
	}
	slog.Info("Import complete", "imported", report.Imported, "errors", report.Errors, "path", cfg.IncidentsPath())
	return nil
}
