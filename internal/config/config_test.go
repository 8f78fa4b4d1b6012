package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.NotEmpty(t, cfg.DBPath)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "local", cfg.NotifyBackend)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.TestMode)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/infra?sslmode=disable")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("NOTIFY_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("INFRATRACK_TEST_MODE", "1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@localhost/infra?sslmode=disable", cfg.DatabaseURL)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "redis", cfg.NotifyBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.TestMode)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infratrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":7000\"\nnotify_backend: mqtt\nnotify_prefix: campus\n"), 0o600))
	t.Setenv("NOTIFY_PREFIX", "override")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "mqtt", cfg.NotifyBackend)
	assert.Equal(t, "override", cfg.NotifyPrefix, "environment wins over the file")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}, wantErr: "unsupported DB_DRIVER"},
		{name: "postgres without url", env: map[string]string{"DB_DRIVER": "postgres"}, wantErr: "DATABASE_URL is required"},
		{name: "unknown backend", env: map[string]string{"NOTIFY_BACKEND": "kafka"}, wantErr: "unsupported NOTIFY_BACKEND"},
		{name: "pg notify on sqlite", env: map[string]string{"NOTIFY_BACKEND": "postgres"}, wantErr: "requires DB_DRIVER=postgres"},
		{name: "log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "unsupported LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
