// Package logger provides structured logging for cleanaudit using zap.
//
// Logs go to stderr by default so that stdout carries only the audit report.
package logger

import (
	"fmt"
	"os"
	"sort"

	"github.com/gookit/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/cleanaudit/internal/config"
)

// Logger wraps zap.SugaredLogger with audit context helpers.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New creates a Logger from configuration. A file output that cannot be
// opened is an error.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	sink, tty, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(buildEncoder(cfg.Format, tty), sink, parseLevel(cfg.Level))
	return wrap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))), nil
}

// NewDefault creates an info-level text Logger on stderr.
func NewDefault() *Logger {
	l, err := New(&config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	if err != nil {
		return NewNop()
	}
	return l
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

func wrap(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return lvl
}

func buildEncoder(format string, tty bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if tty && color.SupportColor() {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// openSink resolves the output setting. tty reports whether the sink is a
// standard stream, where coloured levels are allowed.
func openSink(output string) (ws zapcore.WriteSyncer, tty bool, err error) {
	switch output {
	case "stderr", "":
		return zapcore.Lock(os.Stderr), true, nil
	case "stdout":
		return zapcore.Lock(os.Stdout), true, nil
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.AddSync(f), false, nil
}

// WithCheck returns a Logger tagged with an audit check key.
func (l *Logger) WithCheck(key string) *Logger {
	return l.with("check", key)
}

// WithInput returns a Logger tagged with an input role and its reference.
func (l *Logger) WithInput(role, ref string) *Logger {
	return l.with("input", role, "ref", ref)
}

// WithFields returns a Logger with additional fields, added in key order.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return l.with(args...)
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), base: l.base}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
