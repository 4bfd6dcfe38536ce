package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cleanaudit/internal/audit"
	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/database"
	"github.com/dbsmedya/cleanaudit/internal/logger"
	"github.com/dbsmedya/cleanaudit/internal/report"
	"github.com/dbsmedya/cleanaudit/internal/source"
)

var failOnCritical bool

// errCriticalFailures is returned when --fail-on-critical is set and a
// critical check did not pass.
var errCriticalFailures = errors.New("critical checks failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cleaning audit and print the report",
	Long: `Run loads the raw export, the cleaned master table, the partition
tables and every configured side log, runs the audit checks and renders
the report.

Checks whose side log is not configured or lacks a needed column are
reported as SKIPPED. Malformed inputs abort the run.

Example:
  cleanaudit run --config audit.yaml --format json --output report.json`,
	RunE: runAudit,
}

func init() {
	runCmd.Flags().StringVar(&reportFormat, "format", "",
		"Override report format (text, json, yaml)")
	runCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"Override report destination (stdout or file path)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"Override number of checks run concurrently")
	runCmd.Flags().BoolVar(&noColor, "no-color", false,
		"Disable colours in the text report")
	runCmd.Flags().BoolVar(&failOnCritical, "fail-on-critical", false,
		"Exit non-zero when a critical check does not pass")

	rootCmd.AddCommand(runCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Infow("Starting audit", "config", GetConfigFile(), "workers", cfg.Processing.Workers)

	ctx, stop := database.SetupSignalHandler(context.Background(), func(sig os.Signal) {
		log.Warnw("Received shutdown signal, stopping audit", "signal", sig.String())
	})
	defer stop()

	db, closeDB, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	in, err := source.NewLoader(cfg, db, log).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load inputs: %w", err)
	}

	rules, err := audit.NewRules(cfg.Rules)
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	engine, err := audit.NewEngine(rules, cfg.Processing.Workers, log)
	if err != nil {
		return fmt.Errorf("failed to create audit engine: %w", err)
	}

	results, err := engine.Run(ctx, in)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Audit cancelled by user")
		}
		return fmt.Errorf("audit failed: %w", err)
	}

	rep := report.New(results, cfg.Report.CriticalChecks)
	if err := writeReport(cmd.OutOrStdout(), rep, &cfg.Report); err != nil {
		return err
	}

	log.Infow("Audit complete",
		"pass", rep.Totals.Pass,
		"fail", rep.Totals.Fail,
		"warn", rep.Totals.Warn,
		"skipped", rep.Totals.Skipped,
	)

	if rep.Critical && (failOnCritical || cfg.Report.FailOnCritical) {
		return fmt.Errorf("%w: %s", errCriticalFailures, strings.Join(rep.CriticalFailures, ", "))
	}
	return nil
}

// openSource connects to the source database when an input needs it. The
// returned close function is always safe to call.
func openSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sql.DB, func(), error) {
	if !cfg.Inputs.UsesDatabase() {
		return nil, func() {}, nil
	}

	mgr := database.NewManager(&cfg.Source, log)
	if err := mgr.Connect(ctx); err != nil {
		return nil, nil, err
	}
	if err := mgr.Ping(ctx); err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	return mgr.DB, func() { mgr.Close() }, nil
}

// writeReport renders to stdout or to the configured file. Files never get
// colour codes.
func writeReport(stdout io.Writer, rep *report.AuditReport, cfg *config.ReportConfig) error {
	if cfg.Output == "" || cfg.Output == "stdout" {
		return rep.Render(stdout, cfg.Format, cfg.Color)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := rep.Render(f, cfg.Format, false); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
