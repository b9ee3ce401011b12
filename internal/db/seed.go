package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SeedItem is one entry of the initial catalog.
type SeedItem struct {
	Name     string
	Location string
}

// Catalog is inserted on first start, when the items table is empty.
var Catalog = []SeedItem{
	{"Ping-Pong Table", "G-1 Corridor"},
	{"Multimedia projector", "Secretariat of the Institute of Physics"},
	{"Laptop", "Conference Room A"},
	{"Table", "A-2 Corridor"},
	{"Ping-Pong Paddles", "Reception of Faculty of Physics, Astronomy and Applied Computer Science"},
	{"Microphone", "Secretariat of the Institute of Foreign Languages"},
	{"Interactive whiteboard", "Lecture room 102"},
	{"Camera", "Secretariat of the Institute of Photography"},
	{"Microphone stand", "Recording studio"},
}

// Seed inserts the catalog if no items exist yet. It returns the number of
// inserted items (0 when the table was already populated).
func Seed(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, item := range Catalog {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (name, location) VALUES (?, ?)`,
			item.Name, item.Location,
		); err != nil {
			return 0, fmt.Errorf("seeding item %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}
	return len(Catalog), nil
}
