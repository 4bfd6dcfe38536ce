// Package database manages the MySQL connection used for "mysql:<table>" inputs.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/logger"
)

// Manager owns the single read-only connection pool to the audit source.
type Manager struct {
	DB     *sql.DB
	config *config.DatabaseConfig
	log    *logger.Logger

	maxRetries int
	backoff    time.Duration
}

// NewManager creates a database manager from configuration. A nil logger
// disables connection logging.
func NewManager(cfg *config.DatabaseConfig, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		config:     cfg,
		log:        log,
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// NewManagerWithDB wraps an already open pool. Used by tests with sqlmock.
func NewManagerWithDB(db *sql.DB) *Manager {
	return &Manager{DB: db, log: logger.NewNop()}
}

// Connect opens and verifies the source connection.
func (m *Manager) Connect(ctx context.Context) error {
	if m.DB != nil {
		return nil
	}
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	m.DB = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var err error
	backoff := m.backoff

	for i := 0; i < m.maxRetries; i++ {
		var db *sql.DB
		db, err = m.open()
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				m.log.Debugw("connected to source database",
					"host", m.config.Host, "database", m.config.Database)
				return db, nil
			}
			db.Close()
		}

		if i < m.maxRetries-1 {
			m.log.Warnw("source connection failed, retrying",
				"attempt", i+1, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

func (m *Manager) open() (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(m.config))
	if err != nil {
		return nil, err
	}

	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	if m.config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(m.config.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
// Format: user:password@tcp(host:port)/database?params
func BuildDSN(cfg *config.DatabaseConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	params := "?parseTime=true&interpolateParams=false"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	default:
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("source close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("source database not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("source ping failed: %w", err)
	}
	return nil
}
