package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateInputs()...)

	if c.Inputs.UsesDatabase() {
		errors = append(errors, c.validateDatabase("source", &c.Source)...)
	}

	errors = append(errors, c.validateRules()...)
	errors = append(errors, c.validateProcessing()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateInputs() ValidationErrors {
	var errors ValidationErrors

	if c.Inputs.Raw == "" {
		errors = append(errors, ValidationError{
			Field:   "inputs.raw",
			Message: "raw table is required",
		})
	}

	if c.Inputs.Cleaned == "" {
		errors = append(errors, ValidationError{
			Field:   "inputs.cleaned",
			Message: "cleaned table is required",
		})
	}

	for _, ref := range c.Inputs.InputRefs() {
		if strings.HasPrefix(ref.Ref, MySQLScheme) {
			if strings.TrimPrefix(ref.Ref, MySQLScheme) == "" {
				errors = append(errors, ValidationError{
					Field:   "inputs." + ref.Role,
					Message: "mysql reference needs a table name (mysql:<table>)",
				})
			}
			continue
		}
		lower := strings.ToLower(ref.Ref)
		if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".xlsx") {
			errors = append(errors, ValidationError{
				Field:   "inputs." + ref.Role,
				Message: "must be a .csv or .xlsx file or a mysql:<table> reference",
			})
		}
	}

	return errors
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateRules() ValidationErrors {
	var errors ValidationErrors
	r := &c.Rules

	if r.PartitionFlag == "" {
		errors = append(errors, ValidationError{
			Field:   "rules.partition_flag",
			Message: "partition_flag is required",
		})
	}

	if r.ApplicableValue != 0 && r.ApplicableValue != 1 {
		errors = append(errors, ValidationError{
			Field:   "rules.applicable_value",
			Message: "applicable_value must be 0 or 1",
		})
	}

	if r.CheckboxSeparator == "" {
		errors = append(errors, ValidationError{
			Field:   "rules.checkbox_separator",
			Message: "checkbox_separator is required",
		})
	}

	if _, err := regexp.Compile(r.CheckboxPattern); err != nil {
		errors = append(errors, ValidationError{
			Field:   "rules.checkbox_pattern",
			Message: fmt.Sprintf("invalid regular expression: %v", err),
		})
	}

	for i, p := range r.MatrixPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("rules.matrix_patterns[%d]", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	for i, rule := range r.Cardinality {
		prefix := fmt.Sprintf("rules.cardinality[%d]", i)
		if rule.Prefix == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".prefix",
				Message: "prefix is required",
			})
		}
		if rule.Max < 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".max",
				Message: "max cannot be negative",
			})
		}
	}

	for i, rule := range r.Ranges {
		prefix := fmt.Sprintf("rules.ranges[%d]", i)
		if rule.Column == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".column",
				Message: "column is required",
			})
		}
		if rule.Lower == nil && rule.Upper == nil {
			errors = append(errors, ValidationError{
				Field:   prefix,
				Message: "at least one of lower or upper is required",
			})
		}
		if rule.Lower != nil && rule.Upper != nil && *rule.Lower > *rule.Upper {
			errors = append(errors, ValidationError{
				Field:   prefix,
				Message: "lower cannot exceed upper",
			})
		}
	}

	if r.ColumnTolerance < 0 {
		errors = append(errors, ValidationError{
			Field:   "rules.column_tolerance",
			Message: "column_tolerance cannot be negative",
		})
	}

	if r.MissingnessThreshold < 0 || r.MissingnessThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "rules.missingness_threshold",
			Message: "missingness_threshold must be between 0 and 1",
		})
	}

	if r.TopN <= 0 {
		errors = append(errors, ValidationError{
			Field:   "rules.top_n",
			Message: "top_n must be positive",
		})
	}

	if r.SampleSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "rules.sample_size",
			Message: "sample_size must be positive",
		})
	}

	return errors
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.Workers <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.workers",
			Message: "workers must be positive",
		})
	}

	return errors
}

func (c *Config) validateReport() ValidationErrors {
	var errors ValidationErrors

	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "": true}
	if !validFormats[c.Report.Format] {
		errors = append(errors, ValidationError{
			Field:   "report.format",
			Message: "format must be 'text', 'json', or 'yaml'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
