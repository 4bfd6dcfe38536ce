// Package source loads the audit's input tables from CSV files, XLSX
// workbooks and MySQL tables.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/cleanaudit/internal/audit"
	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/dataset"
	"github.com/dbsmedya/cleanaudit/internal/logger"
)

// ErrInputNotFound is returned when an input file or table does not exist.
var ErrInputNotFound = errors.New("input not found")

// Required input roles. Every other role is an optional side log.
var requiredRoles = []string{"raw", "cleaned"}

// IsRequired reports whether a missing input of this role aborts the run.
func IsRequired(role string) bool {
	for _, r := range requiredRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Loader reads the configured inputs into immutable tables.
type Loader struct {
	inputs   config.InputsConfig
	sideLogs config.SideLogColumns
	db       *sql.DB
	logger   *logger.Logger
}

// NewLoader creates a loader. db may be nil when no input is a mysql: reference.
func NewLoader(cfg *config.Config, db *sql.DB, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Loader{
		inputs:   cfg.Inputs,
		sideLogs: cfg.Rules.SideLogs,
		db:       db,
		logger:   log,
	}
}

// LoadTable loads a single input. The table is named after its role.
func (l *Loader) LoadTable(ctx context.Context, role, ref string) (*dataset.Table, error) {
	if strings.HasPrefix(ref, config.MySQLScheme) {
		return l.loadMySQL(ctx, role, strings.TrimPrefix(ref, config.MySQLScheme))
	}
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".csv":
		return l.loadCSV(role, ref)
	case ".xlsx":
		return l.loadXLSX(role, ref)
	default:
		return nil, fmt.Errorf("input %s: unsupported reference %q (want .csv, .xlsx or %s<table>)", role, ref, config.MySQLScheme)
	}
}

// Load reads every configured input. Raw and cleaned are required; an
// optional input that does not exist is logged and left nil so the checks
// that need it are skipped. Malformed inputs abort the load.
func (l *Loader) Load(ctx context.Context) (*audit.Inputs, error) {
	in := &audit.Inputs{}
	for _, role := range requiredRoles {
		if l.refFor(role) == "" {
			return nil, fmt.Errorf("input %s is not configured", role)
		}
	}

	for _, ref := range l.inputs.InputRefs() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading interrupted: %w", err)
		}
		log := l.logger.WithInput(ref.Role, ref.Ref)

		t, err := l.LoadTable(ctx, ref.Role, ref.Ref)
		if err != nil {
			if errors.Is(err, ErrInputNotFound) && !IsRequired(ref.Role) {
				log.Warnf("Optional input not found, dependent checks will be skipped: %v", err)
				continue
			}
			return nil, err
		}
		log.Infof("Loaded %d rows x %d columns", t.RowCount(), t.ColumnCount())

		if err := assign(in, ref.Role, t, l.sideLogs); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (l *Loader) refFor(role string) string {
	for _, r := range l.inputs.InputRefs() {
		if r.Role == role {
			return r.Ref
		}
	}
	return ""
}

func assign(in *audit.Inputs, role string, t *dataset.Table, cols config.SideLogColumns) error {
	switch role {
	case "raw":
		in.Raw = t
	case "cleaned":
		in.Cleaned = t
	case "borrowers":
		in.Borrowers = t
	case "non_borrowers":
		in.NonBorrowers = t
	case "checkpoint":
		cp, err := dataset.CheckpointFromTable(t, cols.CheckpointMetric, cols.CheckpointValue)
		if err != nil {
			if errors.Is(err, dataset.ErrColumnNotFound) {
				return &dataset.MalformedInputError{Table: role, Reason: err.Error()}
			}
			return err
		}
		in.Checkpoint = cp
	case "dropped_duplicates":
		in.DroppedLog = t
	case "cardinality_violations":
		in.CardinalityLog = t
	case "constraint_fixes":
		in.ConstraintFixLog = t
	case "age_mismatch":
		in.AgeMismatchLog = t
	case "column_profile":
		in.ColumnProfile = t
	case "question_registry":
		in.QuestionRegistry = t
	case "interviewer_qc":
		in.InterviewerQC = t
	default:
		return fmt.Errorf("unknown input role %q", role)
	}
	return nil
}

// rowsToTable parses string rows with the configured missing tokens.
func (l *Loader) rowsToTable(role string, header []string, records [][]string) (*dataset.Table, error) {
	rows := make([][]dataset.Value, len(records))
	for r, rec := range records {
		row := make([]dataset.Value, len(rec))
		for c, cell := range rec {
			row[c] = dataset.ParseCell(cell, l.inputs.MissingTokens)
		}
		rows[r] = row
	}
	return dataset.NewTable(role, header, rows)
}
