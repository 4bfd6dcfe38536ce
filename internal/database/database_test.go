package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cleanaudit/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 3306, User: "auditor", Password: "secret",
				Database: "survey", TLS: "preferred",
			},
			expected: "auditor:secret@tcp(localhost:3306)/survey?parseTime=true&interpolateParams=false&tls=preferred",
		},
		{
			name: "DSN without database",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 3306, User: "auditor", Password: "secret",
			},
			expected: "auditor:secret@tcp(localhost:3306)/?parseTime=true&interpolateParams=false&tls=preferred",
		},
		{
			name: "DSN with TLS disabled",
			cfg: &config.DatabaseConfig{
				Host: "db", Port: 3307, User: "u", Password: "p@ss!", Database: "survey", TLS: "disable",
			},
			expected: "u:p@ss!@tcp(db:3307)/survey?parseTime=true&interpolateParams=false&tls=false",
		},
		{
			name: "DSN with TLS required",
			cfg: &config.DatabaseConfig{
				Host: "db", Port: 3306, User: "u", Password: "p", Database: "survey", TLS: "required",
			},
			expected: "u:p@tcp(db:3306)/survey?parseTime=true&interpolateParams=false&tls=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.cfg))
		})
	}
}

func TestNewManager(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "localhost", Port: 3306}

	m := NewManager(cfg, nil)
	require.NotNil(t, m)
	assert.Same(t, cfg, m.config)
	assert.Nil(t, m.DB, "DB should be nil before Connect()")
	assert.Equal(t, 3, m.maxRetries)
	assert.NoError(t, m.Close(), "closing an unconnected manager is a no-op")
	assert.Error(t, m.Ping(context.Background()))
}

func TestManagerWithDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	m := NewManagerWithDB(db)
	require.NoError(t, m.Connect(context.Background()), "already connected")

	mock.ExpectPing()
	require.NoError(t, m.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("gone away"))
	err = m.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source ping failed")

	mock.ExpectClose()
	require.NoError(t, m.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectHonoursContext(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "nobody", TLS: "disable"}
	m := NewManager(cfg, nil)
	m.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := m.Connect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to source database")
	assert.Nil(t, m.DB)
}
