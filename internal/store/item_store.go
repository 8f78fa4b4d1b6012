package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/infratrack/internal/db"
	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/notify"
)

type ItemStore struct {
	db  *db.DB
	pub notify.Publisher
}

// NewItemStore returns a store that announces writes on pub. A nil pub
// disables notifications.
func NewItemStore(d *db.DB, pub notify.Publisher) *ItemStore {
	if pub == nil {
		pub = notify.Nop{}
	}
	return &ItemStore{db: d, pub: pub}
}

const itemColumns = `id, name, category, status, notes, images, location_id, last_updated`

func scanItem(r rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	var (
		status     string
		notes      sql.NullString
		images     string
		locationID sql.NullString
	)
	if err := r.Scan(&item.ID, &item.Name, &item.Category, &status, &notes, &images, &locationID, &item.LastUpdated); err != nil {
		return nil, err
	}
	item.Status = domain.Status(status)
	item.Notes = notes.String
	if locationID.Valid {
		item.LocationID = &locationID.String
	}
	decoded, err := decodeImages(images)
	if err != nil {
		return nil, err
	}
	item.Images = decoded
	return item, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(data), nil
}

func decodeImages(raw string) ([]string, error) {
	images := []string{}
	if raw == "" {
		return images, nil
	}
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	return images, nil
}

func locationArg(id *string) any {
	if id == nil {
		return nil
	}
	return nullable(*id)
}

func (s *ItemStore) Create(ctx context.Context, in domain.NewItem, lastUpdated time.Time) (*domain.Item, error) {
	images, err := encodeImages(in.Images)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO infrastructure_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), id, strings.TrimSpace(in.Name), in.Category, string(in.Status), nullable(in.Notes), images,
		locationArg(in.LocationID), lastUpdated.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", classify(domain.TableItems, err))
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %w", ErrNotFound)
	}
	publish(ctx, s.pub, domain.TableItems)
	return item, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+itemColumns+` FROM infrastructure_items WHERE id = ?
	`), id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", classify(domain.TableItems, err))
	}

	return item, nil
}

func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM infrastructure_items ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", classify(domain.TableItems, err))
	}
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*domain.Item, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Update writes the non-nil fields of u and stamps last_updated.
func (s *ItemStore) Update(ctx context.Context, id string, u domain.ItemUpdate, lastUpdated time.Time) error {
	var (
		sets []string
		args []any
	)
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*u.Name))
	}
	if u.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *u.Category)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*u.Status))
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, nullable(*u.Notes))
	}
	if u.Images != nil {
		images, err := encodeImages(*u.Images)
		if err != nil {
			return err
		}
		sets = append(sets, "images = ?")
		args = append(args, images)
	}
	if u.LocationID != nil {
		sets = append(sets, "location_id = ?")
		args = append(args, locationArg(u.LocationID))
	}
	sets = append(sets, "last_updated = ?")
	args = append(args, lastUpdated.UTC(), id)

	result, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE infrastructure_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`),
		args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", classify(domain.TableItems, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("item %w", ErrNotFound)
	}

	publish(ctx, s.pub, domain.TableItems)
	return nil
}
