// Command thirteen ingests 13F holdings disclosures from SEC EDGAR into
// the normalized holdings database.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prachitbhike/thirteen/internal/config"
	"github.com/prachitbhike/thirteen/internal/database"
	"github.com/prachitbhike/thirteen/internal/edgar"
	"github.com/prachitbhike/thirteen/internal/ingest"
	"github.com/prachitbhike/thirteen/internal/logger"
	"github.com/prachitbhike/thirteen/internal/storage"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "thirteen",
	Short: "Ingest SEC 13F filings into a normalized holdings dataset",
	Long: `thirteen downloads quarterly institutional holdings disclosures
(13F filings) from SEC EDGAR, parses their information tables, and
persists normalized fund managers, securities, filings, holdings and
derived period-over-period position changes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(cfg.Env)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("start", "", "window start date (YYYY-MM-DD)")
	ingestCmd.Flags().String("end", "", "window end date (YYYY-MM-DD, default: start)")
	ingestCmd.Flags().String("filers", "", "comma-separated filer CIKs (directed ingestion instead of a window)")
	ingestCmd.Flags().StringSlice("forms", nil, "form types to ingest (default: 13F-HR,13F-HR/A)")
	ingestCmd.Flags().Bool("skip-existing", true, "skip filings already present for the same filer and date")
	ingestCmd.Flags().Int("max-concurrent", 0, "max filings processed concurrently (default: INGEST_MAX_CONCURRENT)")
	ingestCmd.Flags().Int("limit", 4, "filings per filer when --filers is used")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// newOrchestrator wires the client, store and orchestrator from config.
func newOrchestrator() (*ingest.Orchestrator, error) {
	manager, err := database.NewManager(cfg)
	if err != nil {
		return nil, err
	}

	client := edgar.NewClient(
		cfg.EdgarBaseURL,
		cfg.EdgarDataURL,
		cfg.EdgarUserAgent,
		edgar.NewLimiter(cfg.RateLimitRPS),
		&http.Client{Timeout: cfg.RequestTimeout},
	)

	return ingest.New(client, storage.New(manager.DB()), logger.Get()), nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run an ingestion pass over a date window or an explicit filer set",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		orc, err := newOrchestrator()
		if err != nil {
			return err
		}

		maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")
		if maxConcurrent <= 0 {
			maxConcurrent = cfg.MaxConcurrent
		}
		skipExisting, _ := cmd.Flags().GetBool("skip-existing")
		forms, _ := cmd.Flags().GetStringSlice("forms")
		limit, _ := cmd.Flags().GetInt("limit")
		opts := ingest.Options{
			SkipExisting:    skipExisting,
			MaxConcurrent:   maxConcurrent,
			FormTypes:       forms,
			FilingsPerFiler: limit,
		}

		ctx := context.Background()
		var summary *ingest.RunSummary

		if filers, _ := cmd.Flags().GetString("filers"); filers != "" {
			summary = orc.IngestForFilers(ctx, splitFilers(filers), opts)
		} else {
			start, end, err := parseWindow(cmd)
			if err != nil {
				return err
			}
			summary = orc.IngestRange(ctx, start, end, opts)
		}

		reportRun(summary)
		if code := exitCode(summary); code != 0 {
			// os.Exit skips the deferred Sync; flush first so the
			// error report is not lost.
			logger.Sync()
			os.Exit(code)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report aggregate dataset statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		stats, err := orc.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Fund managers: %d\n", stats.TotalFundManagers)
		fmt.Printf("Securities:    %d\n", stats.TotalSecurities)
		fmt.Printf("Filings:       %d\n", stats.TotalFilings)
		fmt.Printf("Holdings:      %d\n", stats.TotalHoldings)
		if stats.LastRunAt != nil {
			fmt.Printf("Last run:      %s\n", stats.LastRunAt.Format(time.RFC3339))
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		manager, err := database.NewManager(cfg)
		if err != nil {
			return err
		}
		return manager.RunMigrations()
	},
}

// parseWindow reads --start/--end; --end defaults to --start.
func parseWindow(cmd *cobra.Command) (time.Time, time.Time, error) {
	startStr, _ := cmd.Flags().GetString("start")
	if startStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either --start or --filers is required")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start date %q: %w", startStr, err)
	}

	end := start
	if endStr, _ := cmd.Flags().GetString("end"); endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end date %q: %w", endStr, err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end must not be before --start")
	}
	return start, end, nil
}

// exitCode maps a run summary to the process exit code: 0 for a clean
// run, 2 when any filing failed.
func exitCode(summary *ingest.RunSummary) int {
	if len(summary.Errors) > 0 {
		return 2
	}
	return 0
}

func splitFilers(s string) []string {
	var filers []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			filers = append(filers, f)
		}
	}
	return filers
}

// reportRun logs the run summary and every accumulated per-filing error.
func reportRun(summary *ingest.RunSummary) {
	log := logger.Get()
	log.Infow("ingestion run completed",
		"processed_filings", summary.ProcessedFilings,
		"skipped_filings", summary.SkippedFilings,
		"new_holdings", summary.NewHoldings,
		"updated_securities", summary.UpdatedSecurities,
		"new_fund_managers", summary.NewFundManagers,
		"position_changes", summary.PositionChanges,
		"errors", len(summary.Errors),
		"duration", summary.Duration.String(),
	)
	for i := range summary.Errors {
		log.Warnw("filing failed",
			"accession", summary.Errors[i].AccessionNumber,
			"filer", summary.Errors[i].FilerID,
			"error", summary.Errors[i].Err.Error(),
		)
	}
}
