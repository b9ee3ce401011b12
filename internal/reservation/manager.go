// Package reservation decides whether an item may be reserved for a time
// window and carries out reservation and cancellation against the store.
package reservation

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/events"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// maxTokenAttempts bounds how often Create regenerates a colliding token.
const maxTokenAttempts = 5

// Manager runs reservation lifecycle operations. Each operation is a single
// store transaction; events are published after commit.
type Manager struct {
	DB *sql.DB

	// Events receives lifecycle events. Nil discards them.
	Events events.Publisher
	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
	// NewToken generates reservation tokens. Nil means NewToken.
	NewToken func() (string, error)
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

func (m *Manager) token() (string, error) {
	if m.NewToken != nil {
		return m.NewToken()
	}
	return NewToken()
}

func (m *Manager) publish(ctx context.Context, e events.Event) {
	if m.Events == nil {
		return
	}
	if err := m.Events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "item_id", e.ItemID, "error", err)
	}
}

// Create reserves item itemID for req. The returned reservation carries the
// token the user needs to cancel it.
func (m *Manager) Create(ctx context.Context, itemID int64, req Request) (*model.Reservation, error) {
	for attempt := 1; ; attempt++ {
		r, err := m.create(ctx, itemID, req)
		if errors.Is(err, store.ErrDuplicateToken) && attempt < maxTokenAttempts {
			slog.Warn("reservation token collision, retrying", "item_id", itemID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		m.publish(ctx, events.ReservationEvent(events.TypeReservationCreated, r, m.Now()))
		return r, nil
	}
}

func (m *Manager) create(ctx context.Context, itemID int64, req Request) (*model.Reservation, error) {
	// The connection is opened with _txlock=immediate, so the write lock is
	// held from here on and the overlap check cannot go stale before insert.
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := store.GetItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	existing, err := store.ListReservationsForItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}

	w, err := Validate(item, req, existing, m.Now())
	if err != nil {
		return nil, err
	}

	token, err := m.token()
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	r := &model.Reservation{
		ItemID:       item.ID,
		UserName:     strings.TrimSpace(req.UserName),
		Token:        token,
		Start:        w.Start,
		End:          w.End,
		ItemName:     item.Name,
		ItemLocation: item.Location,
	}
	err = store.InsertReservation(ctx, tx, r)
	switch {
	case errors.Is(err, store.ErrUserNameRequired):
		return nil, ErrUserNameRequired
	case errors.Is(err, store.ErrUnknownItem):
		return nil, ErrItemNotFound
	case err != nil:
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reservation: %w", err)
	}
	return r, nil
}

// Cancel deletes reservation reservationID if token matches its stored
// token. The deleted reservation is returned.
func (m *Manager) Cancel(ctx context.Context, reservationID int64, token string) (*model.Reservation, error) {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := store.GetReservation(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}

	if subtle.ConstantTimeCompare([]byte(r.Token), []byte(token)) != 1 {
		return nil, ErrTokenMismatch
	}

	if err := store.DeleteReservation(ctx, tx, r.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cancellation: %w", err)
	}

	m.publish(ctx, events.ReservationEvent(events.TypeReservationCancelled, r, m.Now()))
	return r, nil
}

// CreateItem adds a new item to the catalog.
func (m *Manager) CreateItem(ctx context.Context, name, location string, available bool) (*model.Item, error) {
	item, err := store.CreateItem(ctx, m.DB, name, location, available)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, events.ItemEvent(events.TypeItemCreated, item, m.Now()))
	return item, nil
}

// DeleteItem removes an item together with its past reservations. Items
// with reservations that have not ended yet cannot be deleted.
func (m *Manager) DeleteItem(ctx context.Context, itemID int64) (*model.Item, error) {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := store.GetItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	active, err := store.CountActiveReservations(ctx, tx, itemID, m.Now())
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrItemInUse
	}

	if err := store.DeleteReservationsForItem(ctx, tx, itemID); err != nil {
		return nil, err
	}
	if err := store.DeleteItem(ctx, tx, itemID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item deletion: %w", err)
	}

	m.publish(ctx, events.ItemEvent(events.TypeItemDeleted, item, m.Now()))
	return item, nil
}

// SetAvailable turns reservations of an item on or off.
func (m *Manager) SetAvailable(ctx context.Context, itemID int64, available bool) (*model.Item, error) {
	found, err := store.SetItemAvailable(ctx, m.DB, itemID, available)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrItemNotFound
	}
	return m.Item(ctx, itemID)
}

// Item returns an item with ReservedNow derived at the manager's current
// time, or ErrItemNotFound.
func (m *Manager) Item(ctx context.Context, itemID int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, m.DB, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	item.ReservedNow, err = store.IsItemReservedAt(ctx, m.DB, itemID, m.Now())
	if err != nil {
		return nil, err
	}
	return item, nil
}
