package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DB is a database handle that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Driver Driver
}

// SQLiteDSN builds a modernc.org/sqlite DSN for a database file.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// Open connects to the database and verifies the connection. It does not run
// migrations; call Migrate for that.
func Open(driver Driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		if cerr := sqlDB.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: driver}, nil
}

// OpenForTesting opens a private in-memory SQLite database with all migrations
// applied.
func OpenForTesting() (*DB, error) {
	d, err := OpenUnmigratedForTesting()
	if err != nil {
		return nil, err
	}
	if err := Migrate(context.Background(), d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// OpenUnmigratedForTesting opens a private in-memory SQLite database with no
// tables.
func OpenUnmigratedForTesting() (*DB, error) {
	dsn := fmt.Sprintf("file:test-%s?mode=memory&cache=shared", uuid.NewString())
	d, err := Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps the in-memory database alive and avoids
	// shared-cache table locks.
	d.SetMaxOpenConns(1)
	return d, nil
}

// Rebind rewrites '?' placeholders into the driver's native form.
func (d *DB) Rebind(query string) string {
	if d.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate applies every pending up migration.
func Migrate(ctx context.Context, d *DB) error {
	return withMigrate(ctx, d, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown reverts every applied migration.
func MigrateDown(ctx context.Context, d *DB) error {
	return withMigrate(ctx, d, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to revert migrations: %w", err)
		}
		return nil
	})
}

// MigrationVersion reports the current schema version. A database without any
// applied migration reports version 0.
func MigrationVersion(ctx context.Context, d *DB) (version uint, dirty bool, err error) {
	err = withMigrate(ctx, d, func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			version, dirty, err = 0, false, nil
		}
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		return nil
	})
	return version, dirty, err
}

func withMigrate(ctx context.Context, d *DB, fn func(m *migrate.Migrate) error) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(d.Driver))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	switch d.Driver {
	case DriverSQLite:
		drv, err := migratesqlite.WithInstance(d.DB, &migratesqlite.Config{})
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to init migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, string(d.Driver), drv)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to init migrations: %w", err)
		}
		// The sqlite driver closes the shared *sql.DB on Close, so only the
		// source is released here.
		defer func() { _ = src.Close() }()
		return fn(m)

	case DriverPostgres:
		conn, err := d.Conn(ctx)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to get connection: %w", err)
		}
		drv, err := migratepg.WithConnection(ctx, conn, &migratepg.Config{})
		if err != nil {
			_ = conn.Close()
			_ = src.Close()
			return fmt.Errorf("failed to init migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, string(d.Driver), drv)
		if err != nil {
			_ = drv.Close()
			_ = src.Close()
			return fmt.Errorf("failed to init migrations: %w", err)
		}
		defer func() { _, _ = m.Close() }()
		return fn(m)
	}

	return fmt.Errorf("unsupported database driver %q", d.Driver)
}
