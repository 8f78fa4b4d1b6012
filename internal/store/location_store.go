package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/infratrack/internal/db"
	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/notify"
)

type LocationStore struct {
	db  *db.DB
	pub notify.Publisher
}

// NewLocationStore returns a store that announces writes on pub. A nil pub
// disables notifications.
func NewLocationStore(d *db.DB, pub notify.Publisher) *LocationStore {
	if pub == nil {
		pub = notify.Nop{}
	}
	return &LocationStore{db: d, pub: pub}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(r rowScanner) (*domain.Location, error) {
	loc := &domain.Location{}
	var pavilion, typ string
	if err := r.Scan(&loc.ID, &loc.Name, &pavilion, &loc.Floor, &typ); err != nil {
		return nil, err
	}
	loc.Pavilion = domain.PavilionID(pavilion)
	loc.Type = domain.LocationType(typ)
	return loc, nil
}

func (s *LocationStore) Create(ctx context.Context, in domain.NewLocation) (*domain.Location, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO locations (id, name, pavilion, floor, type) VALUES (?, ?, ?, ?, ?)
	`), id, strings.TrimSpace(in.Name), string(in.Pavilion), in.Floor, string(in.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", classify(domain.TableLocations, err))
	}

	loc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("location %w", ErrNotFound)
	}
	publish(ctx, s.pub, domain.TableLocations)
	return loc, nil
}

func (s *LocationStore) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	loc, err := scanLocation(s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, name, pavilion, floor, type FROM locations WHERE id = ?
	`), id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", classify(domain.TableLocations, err))
	}

	return loc, nil
}

func (s *LocationStore) List(ctx context.Context) ([]*domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, pavilion, floor, type FROM locations
		ORDER BY pavilion ASC, floor ASC, name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", classify(domain.TableLocations, err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	locations := []*domain.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}
