// Package config provides configuration structures and loading for cleanaudit.
package config

// Config represents the complete application configuration.
type Config struct {
	Inputs     InputsConfig     `yaml:"inputs" mapstructure:"inputs"`
	Source     DatabaseConfig   `yaml:"source" mapstructure:"source"`
	Rules      RulesConfig      `yaml:"rules" mapstructure:"rules"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// InputsConfig names every table the audit reads. Each entry is either a
// file path (.csv or .xlsx) or a "mysql:<table>" reference. Empty entries
// are treated as absent side logs.
type InputsConfig struct {
	Raw                   string   `yaml:"raw" mapstructure:"raw"`
	Cleaned               string   `yaml:"cleaned" mapstructure:"cleaned"`
	Borrowers             string   `yaml:"borrowers" mapstructure:"borrowers"`
	NonBorrowers          string   `yaml:"non_borrowers" mapstructure:"non_borrowers"`
	Checkpoint            string   `yaml:"checkpoint" mapstructure:"checkpoint"`
	DroppedDuplicates     string   `yaml:"dropped_duplicates" mapstructure:"dropped_duplicates"`
	CardinalityViolations string   `yaml:"cardinality_violations" mapstructure:"cardinality_violations"`
	ConstraintFixes       string   `yaml:"constraint_fixes" mapstructure:"constraint_fixes"`
	AgeMismatch           string   `yaml:"age_mismatch" mapstructure:"age_mismatch"`
	ColumnProfile         string   `yaml:"column_profile" mapstructure:"column_profile"`
	QuestionRegistry      string   `yaml:"question_registry" mapstructure:"question_registry"`
	InterviewerQC         string   `yaml:"interviewer_qc" mapstructure:"interviewer_qc"`
	Sheet                 string   `yaml:"sheet" mapstructure:"sheet"`                   // xlsx sheet, first sheet when empty
	MissingTokens         []string `yaml:"missing_tokens" mapstructure:"missing_tokens"` // cell texts read as missing
}

// DatabaseConfig represents the MySQL database used for "mysql:<table>" inputs.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// RulesConfig holds the survey-specific rule set. Nothing in the audit
// addresses a column by position; every column is reached through here.
type RulesConfig struct {
	PartitionFlag       string   `yaml:"partition_flag" mapstructure:"partition_flag"`
	ApplicableValue     float64  `yaml:"applicable_value" mapstructure:"applicable_value"` // flag value for which conditional columns apply
	RowIDColumn         string   `yaml:"row_id_column" mapstructure:"row_id_column"`
	ConditionalPrefixes []string `yaml:"conditional_prefixes" mapstructure:"conditional_prefixes"`

	CheckboxSeparator string   `yaml:"checkbox_separator" mapstructure:"checkbox_separator"`
	CheckboxPattern   string   `yaml:"checkbox_pattern" mapstructure:"checkbox_pattern"`
	MatrixPatterns    []string `yaml:"matrix_patterns" mapstructure:"matrix_patterns"`

	Cardinality []CardinalityRule `yaml:"cardinality" mapstructure:"cardinality"`
	Ranges      []RangeRule       `yaml:"ranges" mapstructure:"ranges"`

	AddedColumns    []string `yaml:"added_columns" mapstructure:"added_columns"`
	ArtifactColumns []string `yaml:"artifact_columns" mapstructure:"artifact_columns"`
	ColumnTolerance int      `yaml:"column_tolerance" mapstructure:"column_tolerance"`

	MissingnessThreshold     float64 `yaml:"missingness_threshold" mapstructure:"missingness_threshold"`
	InterviewerMissingPctMax float64 `yaml:"interviewer_missing_pct_max" mapstructure:"interviewer_missing_pct_max"`
	TopN                     int     `yaml:"top_n" mapstructure:"top_n"`
	SampleSize               int     `yaml:"sample_size" mapstructure:"sample_size"`

	SideLogs SideLogColumns `yaml:"side_logs" mapstructure:"side_logs"`
}

// CardinalityRule limits how many options of one multi-select block may be
// ticked. Include/Exclude narrow the block to labels containing (or not
// containing) the given substrings.
type CardinalityRule struct {
	Name    string   `yaml:"name" mapstructure:"name"`
	Prefix  string   `yaml:"prefix" mapstructure:"prefix"`
	Max     int      `yaml:"max" mapstructure:"max"`
	Include []string `yaml:"include,omitempty" mapstructure:"include"`
	Exclude []string `yaml:"exclude,omitempty" mapstructure:"exclude"`
}

// RangeRule declares inclusive bounds for a numeric column. A nil bound is open.
type RangeRule struct {
	Name            string   `yaml:"name" mapstructure:"name"`
	Column          string   `yaml:"column" mapstructure:"column"`
	Lower           *float64 `yaml:"lower,omitempty" mapstructure:"lower"`
	Upper           *float64 `yaml:"upper,omitempty" mapstructure:"upper"`
	VerifyRawNulled bool     `yaml:"verify_raw_nulled" mapstructure:"verify_raw_nulled"`
}

// SideLogColumns names the columns of the side logs that checks read.
type SideLogColumns struct {
	CheckpointMetric      string `yaml:"checkpoint_metric" mapstructure:"checkpoint_metric"`
	CheckpointValue       string `yaml:"checkpoint_value" mapstructure:"checkpoint_value"`
	FixColumn             string `yaml:"fix_column" mapstructure:"fix_column"`
	FixRule               string `yaml:"fix_rule" mapstructure:"fix_rule"`
	ViolationRule         string `yaml:"violation_rule" mapstructure:"violation_rule"`
	ProfileColumn         string `yaml:"profile_column" mapstructure:"profile_column"`
	ProfileMissingPct     string `yaml:"profile_missing_pct" mapstructure:"profile_missing_pct"`
	AgeReported           string `yaml:"age_reported" mapstructure:"age_reported"`
	AgeDerived            string `yaml:"age_derived" mapstructure:"age_derived"`
	RegistryColumn        string `yaml:"registry_column" mapstructure:"registry_column"`
	RegistryType          string `yaml:"registry_type" mapstructure:"registry_type"`
	Interviewer           string `yaml:"interviewer" mapstructure:"interviewer"`
	InterviewerCount      string `yaml:"interviewer_count" mapstructure:"interviewer_count"`
	InterviewerMissingPct string `yaml:"interviewer_missing_pct" mapstructure:"interviewer_missing_pct"`
}

// ProcessingConfig represents check execution settings.
type ProcessingConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 1 runs checks sequentially
}

// ReportConfig represents report rendering settings.
type ReportConfig struct {
	Format         string   `yaml:"format" mapstructure:"format"` // text, json or yaml
	Output         string   `yaml:"output" mapstructure:"output"` // stdout or file path
	Color          bool     `yaml:"color" mapstructure:"color"`
	CriticalChecks []string `yaml:"critical_checks" mapstructure:"critical_checks"`
	FailOnCritical bool     `yaml:"fail_on_critical" mapstructure:"fail_on_critical"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

func bound(v float64) *float64 { return &v }

// DefaultConfig returns a Config with the household-finance survey defaults.
func DefaultConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			MissingTokens: []string{"", "NA", "NaN", "nan", "NULL"},
		},
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     4,
			MaxIdleConnections: 2,
		},
		Rules: DefaultRules(),
		Processing: ProcessingConfig{
			Workers: 4,
		},
		Report: ReportConfig{
			Format:         "text",
			Output:         "stdout",
			Color:          true,
			CriticalChecks: []string{"row_count", "target_flag.counts", "types", "negative_values"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// DefaultRules returns the rule set of the 2026 borrower survey.
func DefaultRules() RulesConfig {
	return RulesConfig{
		PartitionFlag:   "has_loan",
		ApplicableValue: 1,
		RowIDColumn:     "row_id",
		ConditionalPrefixes: []string{
			"2.4.1", "2.4.2", "2.4.3", "2.4.4",
			"2.5", "2.6", "2.7", "2.8", "2.9", "2.10",
			"3.4", "3.5", "3.6", "3.7", "3.8", "3.9",
			"3.10", "3.11", "3.12", "3.13", "3.14", "3.15", "3.16",
		},
		CheckboxSeparator: "/",
		CheckboxPattern:   `\?/\s*[^?]+$`,
		MatrixPatterns:    []string{`^\d+-2\.1\.`, `^\d+-3\.3`},
		Cardinality: []CardinalityRule{
			{Name: "Q2.2 max 3 selections", Prefix: "2.2.", Max: 3},
			{Name: "Q2.1 max 3 selections", Prefix: "2.1.", Max: 3},
			{Name: "Q2.1 max 3 appropriate purposes", Prefix: "2.1.", Max: 3, Include: []string{"мувофиқ"}, Exclude: []string{"эмас"}},
			{Name: "Q3.10 max 2 selections", Prefix: "3.10.", Max: 2},
		},
		Ranges: []RangeRule{
			{Name: "age", Column: "1.1. Ёшингиз:", Lower: bound(18), Upper: bound(100)},
			{Name: "children", Column: "1.8. 18 ёшга етмаган фарзандларингиз сони?", Lower: bound(0), VerifyRawNulled: true},
			{Name: "hh_size", Column: "1.6 Уй хўжалигингиз жами аъзолари сони нечта?", Lower: bound(1), VerifyRawNulled: true},
			{Name: "hh_workers", Column: "1.7. Уй хўжалигингизда неча киши даромадли меҳнат (иш) билан банд?", Lower: bound(0), VerifyRawNulled: true},
		},
		AddedColumns:             []string{"row_id", "has_loan", "q24_sum"},
		ArtifactColumns:          []string{"age"},
		ColumnTolerance:          3,
		MissingnessThreshold:     0.05,
		InterviewerMissingPctMax: 20,
		TopN:                     10,
		SampleSize:               5,
		SideLogs: SideLogColumns{
			CheckpointMetric:      "metric",
			CheckpointValue:       "value",
			FixColumn:             "column",
			FixRule:               "rule",
			ViolationRule:         "rule_name",
			ProfileColumn:         "column",
			ProfileMissingPct:     "missing_pct",
			AgeReported:           "age",
			AgeDerived:            "age_q",
			RegistryColumn:        "column",
			RegistryType:          "type",
			Interviewer:           "interviewer",
			InterviewerCount:      "n_interviews",
			InterviewerMissingPct: "avg_missing_pct_all_vars",
		},
	}
}
