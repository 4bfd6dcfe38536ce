package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Inputs.Raw = "raw.xlsx"
	cfg.Inputs.Cleaned = "cleaned.csv"
	return cfg
}

func TestValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing raw", func(c *Config) { c.Inputs.Raw = "" }, "inputs.raw"},
		{"missing cleaned", func(c *Config) { c.Inputs.Cleaned = "" }, "inputs.cleaned"},
		{"bad extension", func(c *Config) { c.Inputs.ColumnProfile = "profile.parquet" }, "inputs.column_profile"},
		{"empty mysql table", func(c *Config) { c.Inputs.Borrowers = "mysql:" }, "inputs.borrowers"},
		{"mysql without host", func(c *Config) {
			c.Inputs.Raw = "mysql:survey_raw"
			c.Source.User = "u"
			c.Source.Database = "d"
		}, "source.host"},
		{"mysql bad port", func(c *Config) {
			c.Inputs.Raw = "mysql:survey_raw"
			c.Source = DatabaseConfig{Host: "h", Port: 99999, User: "u", Database: "d"}
		}, "source.port"},
		{"mysql bad tls", func(c *Config) {
			c.Inputs.Raw = "mysql:survey_raw"
			c.Source = DatabaseConfig{Host: "h", Port: 3306, User: "u", Database: "d", TLS: "maybe"}
		}, "source.tls"},
		{"missing partition flag", func(c *Config) { c.Rules.PartitionFlag = "" }, "rules.partition_flag"},
		{"bad applicable value", func(c *Config) { c.Rules.ApplicableValue = 2 }, "rules.applicable_value"},
		{"missing separator", func(c *Config) { c.Rules.CheckboxSeparator = "" }, "rules.checkbox_separator"},
		{"bad checkbox pattern", func(c *Config) { c.Rules.CheckboxPattern = "([" }, "rules.checkbox_pattern"},
		{"bad matrix pattern", func(c *Config) { c.Rules.MatrixPatterns = []string{"ok", "(["} }, "rules.matrix_patterns[1]"},
		{"cardinality without prefix", func(c *Config) {
			c.Rules.Cardinality = []CardinalityRule{{Max: 2}}
		}, "rules.cardinality[0].prefix"},
		{"cardinality negative max", func(c *Config) {
			c.Rules.Cardinality = []CardinalityRule{{Prefix: "2.2.", Max: -1}}
		}, "rules.cardinality[0].max"},
		{"range without column", func(c *Config) {
			c.Rules.Ranges = []RangeRule{{Lower: bound(0)}}
		}, "rules.ranges[0].column"},
		{"range without bounds", func(c *Config) {
			c.Rules.Ranges = []RangeRule{{Column: "x"}}
		}, "rules.ranges[0]"},
		{"range inverted", func(c *Config) {
			c.Rules.Ranges = []RangeRule{{Column: "x", Lower: bound(5), Upper: bound(1)}}
		}, "lower cannot exceed upper"},
		{"negative tolerance", func(c *Config) { c.Rules.ColumnTolerance = -1 }, "rules.column_tolerance"},
		{"threshold above one", func(c *Config) { c.Rules.MissingnessThreshold = 5 }, "rules.missingness_threshold"},
		{"zero top n", func(c *Config) { c.Rules.TopN = 0 }, "rules.top_n"},
		{"zero sample size", func(c *Config) { c.Rules.SampleSize = 0 }, "rules.sample_size"},
		{"zero workers", func(c *Config) { c.Processing.Workers = 0 }, "processing.workers"},
		{"bad report format", func(c *Config) { c.Report.Format = "html" }, "report.format"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error mentioning %q", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestDatabaseNotValidatedWithoutMySQLInputs(t *testing.T) {
	cfg := validConfig()
	cfg.Source = DatabaseConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("source settings should be ignored for file inputs, got: %v", err)
	}
}

func TestValidationErrorsAggregate(t *testing.T) {
	cfg := validConfig()
	cfg.Inputs.Raw = ""
	cfg.Processing.Workers = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(verrs), verrs)
	}
	if !strings.HasPrefix(err.Error(), "validation failed:") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidationErrorsEmpty(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "" {
		t.Errorf("expected empty message, got %q", errs.Error())
	}
}
