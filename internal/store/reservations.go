package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// InsertReservation stores r and fills in its ID and CreatedAt.
// Constraint failures are reported as ErrDuplicateToken, ErrUserNameRequired
// or ErrUnknownItem.
func InsertReservation(ctx context.Context, q Querier, r *model.Reservation) error {
	r.Start = dbTime(r.Start)
	r.End = dbTime(r.End)

	result, err := q.ExecContext(ctx,
		`INSERT INTO reservations (item_id, user_name, token, start_at, end_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ItemID, r.UserName, r.Token, r.Start, r.End,
	)
	switch {
	case isUniqueViolation(err):
		return ErrDuplicateToken
	case isUserNameViolation(err):
		return ErrUserNameRequired
	case isForeignKeyViolation(err):
		return ErrUnknownItem
	case err != nil:
		return fmt.Errorf("inserting reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting reservation id: %w", err)
	}
	r.ID = id

	err = q.QueryRowContext(ctx,
		`SELECT created_at FROM reservations WHERE id = ?`, id,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("reading reservation: %w", err)
	}
	return nil
}

// GetReservation returns a reservation by ID (token included), or nil if it
// does not exist.
func GetReservation(ctx context.Context, q Querier, id int64) (*model.Reservation, error) {
	r := &model.Reservation{}
	err := q.QueryRowContext(ctx,
		`SELECT r.id, r.item_id, r.user_name, r.token, r.start_at, r.end_at, r.created_at,
		        i.name AS item_name, i.location AS item_location
		 FROM reservations r
		 JOIN items i ON i.id = r.item_id
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.ItemID, &r.UserName, &r.Token, &r.Start, &r.End, &r.CreatedAt,
		&r.ItemName, &r.ItemLocation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting reservation: %w", err)
	}
	return r, nil
}

// ListReservationsForItem returns all reservations of one item ordered by
// start time. Joined fields are not populated.
func ListReservationsForItem(ctx context.Context, q Querier, itemID int64) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, item_id, user_name, token, start_at, end_at, created_at
		 FROM reservations
		 WHERE item_id = ?
		 ORDER BY start_at`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.ItemID, &r.UserName, &r.Token, &r.Start, &r.End, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// ListReservations returns reservations joined with their item, optionally
// filtered by item, ordered by start time.
func ListReservations(ctx context.Context, q Querier, itemID int64) ([]model.Reservation, error) {
	query := `SELECT r.id, r.item_id, r.user_name, r.token, r.start_at, r.end_at, r.created_at,
	                 i.name AS item_name, i.location AS item_location
	          FROM reservations r
	          JOIN items i ON i.id = r.item_id
	          WHERE 1=1`
	var args []any

	if itemID > 0 {
		query += ` AND r.item_id = ?`
		args = append(args, itemID)
	}

	query += ` ORDER BY r.start_at, r.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.ItemID, &r.UserName, &r.Token, &r.Start, &r.End, &r.CreatedAt,
			&r.ItemName, &r.ItemLocation); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// DeleteReservation removes a reservation by ID.
func DeleteReservation(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting reservation: %w", err)
	}
	return nil
}

// DeleteReservationsForItem removes every reservation of an item.
func DeleteReservationsForItem(ctx context.Context, q Querier, itemID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM reservations WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item reservations: %w", err)
	}
	return nil
}

// CountActiveReservations counts reservations of an item that have not ended
// by at (ongoing or upcoming).
func CountActiveReservations(ctx context.Context, q Querier, itemID int64, at time.Time) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE item_id = ? AND end_at > ?`,
		itemID, dbTime(at),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active reservations: %w", err)
	}
	return count, nil
}
