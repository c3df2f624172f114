package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"incident-pipeline/internal/config"
	"incident-pipeline/internal/logging"
)

var (
	cfg      *config.Config
	closeLog func() error

	baseURL string
	threads int
	port    string
	limit   int
)

var rootCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Import, enrich and serve incident reports",
	Long: `incidents runs the three stages of the incident pipeline:

  import - fetch incident reports into the storage directory
  enrich - add comment counts to every imported incident
  serve  - answer lookup, creation and search requests over HTTP`,
	SilenceUsage: true,
}

// setup loads configuration, applies flag overrides and opens the operator
// log for one stage.
func setup(cmd *cobra.Command, logFile string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.EnrichBaseURL = baseURL
	}
	if flags.Changed("threads") {
		if threads < 1 {
			return fmt.Errorf("--threads must be at least 1")
		}
		cfg.EnrichWorkers = threads
	}
	if flags.Changed("port") {
		cfg.APIPort = port
	}
	if flags.Changed("limit") {
		if limit < 1 {
			return fmt.Errorf("--limit must be at least 1")
		}
		cfg.ImportLimit = limit
	}

	_, closeLog, err = logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.LogDir,
		File:   logFile,
	})
	return err
}

func teardown(*cobra.Command, []string) error {
	if closeLog != nil {
		return closeLog()
	}
	return nil
}

func init() {
	importCmd.Flags().StringVar(&baseURL, "base-url", "", "Upstream base URL (or set ENRICH_BASE_URL)")
	importCmd.Flags().IntVar(&limit, "limit", 0, "Number of incidents to import (or set IMPORT_LIMIT)")

	enrichCmd.Flags().StringVar(&baseURL, "base-url", "", "Comments service base URL (or set ENRICH_BASE_URL)")
	enrichCmd.Flags().IntVar(&threads, "threads", 0, "Number of enrichment workers (or set ENRICH_WORKERS)")

	serveCmd.Flags().StringVar(&port, "port", "", "Port to listen on (or set API_PORT)")

	rootCmd.AddCommand(importCmd, enrichCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
