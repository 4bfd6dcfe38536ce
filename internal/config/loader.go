package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Rule lists replace the defaults instead of merging element by element.
	if v.IsSet("rules.cardinality") {
		cfg.Rules.Cardinality = nil
	}
	if v.IsSet("rules.ranges") {
		cfg.Rules.Ranges = nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		cardinalityShorthandHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var cardinalityRuleType = reflect.TypeOf(CardinalityRule{})

// cardinalityShorthandHook accepts "prefix:max" strings for cardinality rules.
func cardinalityShorthandHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != cardinalityRuleType {
			return data, nil
		}
		return ParseCardinalityRule(data.(string))
	}
}

// ParseCardinalityRule parses the "prefix:max" shorthand.
func ParseCardinalityRule(s string) (CardinalityRule, error) {
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return CardinalityRule{}, fmt.Errorf("cardinality rule %q must look like prefix:max", s)
	}
	prefix := strings.TrimSpace(s[:idx])
	max, err := strconv.Atoi(strings.TrimSpace(s[idx+1:]))
	if err != nil {
		return CardinalityRule{}, fmt.Errorf("cardinality rule %q: invalid max: %w", s, err)
	}
	return CardinalityRule{
		Name:   fmt.Sprintf("%s max %d selections", prefix, max),
		Prefix: prefix,
		Max:    max,
	}, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	in := &cfg.Inputs
	for _, p := range []*string{
		&in.Raw, &in.Cleaned, &in.Borrowers, &in.NonBorrowers, &in.Checkpoint,
		&in.DroppedDuplicates, &in.CardinalityViolations, &in.ConstraintFixes,
		&in.AgeMismatch, &in.ColumnProfile, &in.QuestionRegistry, &in.InterviewerQC,
	} {
		*p = expandEnvVar(*p)
	}

	cfg.Source.Host = expandEnvVar(cfg.Source.Host)
	cfg.Source.User = expandEnvVar(cfg.Source.User)
	cfg.Source.Password = expandEnvVar(cfg.Source.Password)
	cfg.Source.Database = expandEnvVar(cfg.Source.Database)

	cfg.Report.Output = expandEnvVar(cfg.Report.Output)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, reportFormat, reportOutput string, workers int, noColor bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if reportFormat != "" {
		c.Report.Format = reportFormat
	}
	if reportOutput != "" {
		c.Report.Output = reportOutput
	}
	if workers > 0 {
		c.Processing.Workers = workers
	}
	if noColor {
		c.Report.Color = false
	}
}

// InputRefs returns the configured inputs by role, in a fixed order.
// Roles with an empty reference are omitted.
func (in InputsConfig) InputRefs() []InputRef {
	all := []InputRef{
		{Role: "raw", Ref: in.Raw},
		{Role: "cleaned", Ref: in.Cleaned},
		{Role: "borrowers", Ref: in.Borrowers},
		{Role: "non_borrowers", Ref: in.NonBorrowers},
		{Role: "checkpoint", Ref: in.Checkpoint},
		{Role: "dropped_duplicates", Ref: in.DroppedDuplicates},
		{Role: "cardinality_violations", Ref: in.CardinalityViolations},
		{Role: "constraint_fixes", Ref: in.ConstraintFixes},
		{Role: "age_mismatch", Ref: in.AgeMismatch},
		{Role: "column_profile", Ref: in.ColumnProfile},
		{Role: "question_registry", Ref: in.QuestionRegistry},
		{Role: "interviewer_qc", Ref: in.InterviewerQC},
	}
	refs := all[:0]
	for _, r := range all {
		if r.Ref != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// InputRef pairs an input role with its reference.
type InputRef struct {
	Role string
	Ref  string
}

// UsesDatabase reports whether any input is a "mysql:" reference.
func (in InputsConfig) UsesDatabase() bool {
	for _, r := range in.InputRefs() {
		if strings.HasPrefix(r.Ref, MySQLScheme) {
			return true
		}
	}
	return false
}

// MySQLScheme prefixes inputs that are read from the configured database.
const MySQLScheme = "mysql:"
