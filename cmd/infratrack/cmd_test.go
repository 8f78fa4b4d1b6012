package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/infratrack/internal/config"
	"github.com/vbonduro/infratrack/internal/db"
	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/notify/local"
	"github.com/vbonduro/infratrack/internal/store"
)

// run executes the CLI against a SQLite file in a temp dir.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infratrack.db")

	out, err := run(t, path, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)

	out, err = run(t, path, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "schema version 2\n", out)

	out, err = run(t, path, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)
}

func TestStatusCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infratrack.db")

	_, err := run(t, path, "migrate", "up")
	require.NoError(t, err)

	d, err := db.Open(db.DriverSQLite, db.SQLiteDSN(path))
	require.NoError(t, err)
	ctx := context.Background()
	loc, err := store.NewLocationStore(d, nil).Create(ctx, domain.NewLocation{
		Name: "C101", Pavilion: domain.PavilionC, Floor: 1, Type: domain.LocationClassroom,
	})
	require.NoError(t, err)
	items := store.NewItemStore(d, nil)
	for _, s := range []domain.Status{domain.StatusBad, domain.StatusGood, domain.StatusBad} {
		_, err := items.Create(ctx, domain.NewItem{Name: "Window", Category: "windows", Status: s, LocationID: &loc.ID}, time.Now())
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())

	out, err := run(t, path, "status")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"PAVILION", "LOCATIONS", "ITEMS", "BAD"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"A", "0", "0", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"C", "1", "3", "2"}, strings.Fields(lines[3]))
}

func TestStatusCommandUnprovisioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")

	out, err := run(t, path, "status")
	require.NoError(t, err)
	assert.NotContains(t, out, "error:")
	assert.Contains(t, out, "D")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("NOTIFY_BACKEND", "carrier-pigeon")
	_, err := run(t, filepath.Join(t.TempDir(), "x.db"), "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNewFeedDefaultsToLocalBus(t *testing.T) {
	cfg := &config.Config{NotifyBackend: "local"}
	feed, closeFeed, err := newFeed(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer closeFeed()

	_, ok := feed.(*local.Bus)
	assert.True(t, ok, "got %T", feed)
}

func TestOpenDatabaseTestMode(t *testing.T) {
	d, err := openDatabase(&config.Config{TestMode: true, DBDriver: "sqlite"})
	require.NoError(t, err)
	defer func() { _ = d.Close() }()

	version, _, err := db.MigrationVersion(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}
