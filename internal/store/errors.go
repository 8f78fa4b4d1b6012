package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/vbonduro/infratrack/internal/notify"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrTableMissing matches any *TableMissingError.
	ErrTableMissing = errors.New("table missing")
)

// pqUndefinedTable is the PostgreSQL SQLSTATE for "relation does not exist".
const pqUndefinedTable = "42P01"

// TableMissingError reports a query against a table that has not been
// created yet. Its message uses PostgreSQL's wording regardless of driver so
// callers can rely on a single text form.
type TableMissingError struct {
	Table string
	Err   error
}

func (e *TableMissingError) Error() string {
	return fmt.Sprintf("relation %q does not exist", e.Table)
}

func (e *TableMissingError) Unwrap() error { return e.Err }

func (e *TableMissingError) Is(target error) bool { return target == ErrTableMissing }

// classify turns driver-specific "missing table" failures for table into a
// *TableMissingError and returns every other error unchanged.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		return &TableMissingError{Table: table, Err: err}
	}
	msg := err.Error()
	if strings.Contains(msg, "no such table: "+table) ||
		strings.Contains(msg, fmt.Sprintf("relation %q does not exist", table)) {
		return &TableMissingError{Table: table, Err: err}
	}
	return err
}

// publish announces a committed write. Failures are logged only: the row is
// already stored and subscribers catch up on the next change.
func publish(ctx context.Context, pub notify.Publisher, table string) {
	if err := pub.Publish(ctx, table); err != nil {
		slog.Error("failed to publish change", "table", table, "error", err)
	}
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
