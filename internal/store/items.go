package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// ItemFilter narrows ListItems.
type ItemFilter struct {
	// Location, when set, matches items at exactly this location.
	Location string
	// IncludeUnavailable also returns items whose available flag is off.
	IncludeUnavailable bool
	// At is the instant used to derive ReservedNow. Zero means time.Now().
	At time.Time
}

// CreateItem creates a new item.
func CreateItem(ctx context.Context, q Querier, name, location string, available bool) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, location, available) VALUES (?, ?, ?)`,
		name, location, available,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
// ReservedNow is not populated; see IsItemReservedAt.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	item := &model.Item{}
	var imageMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, name, location, available, image_mime, created_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Location, &item.Available, &imageMime, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// ListItems returns items matching the filter, ordered by name.
func ListItems(ctx context.Context, q Querier, filter ItemFilter) ([]model.Item, error) {
	at := filter.At
	if at.IsZero() {
		at = time.Now()
	}
	at = dbTime(at)

	query := `SELECT i.id, i.name, i.location, i.available, i.image_mime, i.created_at,
	                 EXISTS (SELECT 1 FROM reservations r
	                         WHERE r.item_id = i.id AND r.start_at <= ? AND r.end_at > ?) AS reserved_now
	          FROM items i
	          WHERE 1=1`
	args := []any{at, at}

	if !filter.IncludeUnavailable {
		query += ` AND i.available = 1`
	}
	if filter.Location != "" {
		query += ` AND i.location = ?`
		args = append(args, filter.Location)
	}

	query += ` ORDER BY i.name, i.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Location, &item.Available, &imageMime, &item.CreatedAt, &item.ReservedNow); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetItemAvailable sets the item's reservable flag. It reports whether the
// item exists.
func SetItemAvailable(ctx context.Context, q Querier, id int64, available bool) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET available = ? WHERE id = ?`,
		available, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating item availability: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item availability: %w", err)
	}
	return n > 0, nil
}

// DeleteItem removes an item row. Reservations referencing it must be
// removed first.
func DeleteItem(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// IsItemReservedAt reports whether any reservation of the item covers at.
func IsItemReservedAt(ctx context.Context, q Querier, itemID int64, at time.Time) (bool, error) {
	at = dbTime(at)
	var reserved bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations
		                WHERE item_id = ? AND start_at <= ? AND end_at > ?)`,
		itemID, at, at,
	).Scan(&reserved)
	if err != nil {
		return false, fmt.Errorf("checking item reservation: %w", err)
	}
	return reserved, nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, q Querier, id int64, image []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, q Querier, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
