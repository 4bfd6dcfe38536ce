package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cleanaudit/internal/audit"
	"github.com/dbsmedya/cleanaudit/internal/logger"
	"github.com/dbsmedya/cleanaudit/internal/source"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and load every input",
	Long: `Validate checks the configuration file, compiles the rule set and
loads every configured input to make sure the audit can run.

Checks performed:
  - Configuration syntax and required fields
  - Checkbox and matrix patterns compile
  - Source database connectivity (when a mysql: input is configured)
  - Every input exists and parses; its shape is printed

Example:
  cleanaudit validate --config audit.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := audit.NewRules(cfg.Rules); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	db, closeDB, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	refs := cfg.Inputs.InputRefs()
	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Inputs configured: %d\n\n", len(refs))

	loader := source.NewLoader(cfg, db, log)
	failed := 0
	for _, ref := range refs {
		t, err := loader.LoadTable(ctx, ref.Role, ref.Ref)
		switch {
		case err == nil:
			cmd.Printf("✅ %-24s %d rows x %d columns  (%s)\n", ref.Role, t.RowCount(), t.ColumnCount(), ref.Ref)
		case errors.Is(err, source.ErrInputNotFound) && !source.IsRequired(ref.Role):
			cmd.Printf("⚠️  %-24s not found, dependent checks will be skipped  (%s)\n", ref.Role, ref.Ref)
		default:
			cmd.Printf("❌ %-24s %v\n", ref.Role, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d input(s) failed to load", failed)
	}
	cmd.Printf("\nConfiguration is valid.\n")
	return nil
}
