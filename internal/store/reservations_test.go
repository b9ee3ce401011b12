package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

var base = time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

func newReservation(itemID int64, token string, start time.Time, hours int) *model.Reservation {
	return &model.Reservation{
		ItemID:   itemID,
		UserName: "alice",
		Token:    token,
		Start:    start,
		End:      start.Add(time.Duration(hours) * time.Hour),
	}
}

func TestInsertAndGetReservation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Laptop", "Conference Room A", true)
	r := newReservation(item.ID, "abc123xyz", base, 2)

	if err := InsertReservation(ctx, database, r); err != nil {
		t.Fatalf("InsertReservation: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("expected reservation id to be set")
	}

	got, err := GetReservation(ctx, database, r.ID)
	if err != nil {
		t.Fatalf("GetReservation: %v", err)
	}
	if got.Token != "abc123xyz" {
		t.Errorf("expected token 'abc123xyz', got %q", got.Token)
	}
	if !got.Start.Equal(base) || !got.End.Equal(base.Add(2*time.Hour)) {
		t.Errorf("unexpected window %s - %s", got.Start, got.End)
	}
	if got.ItemName != "Laptop" || got.ItemLocation != "Conference Room A" {
		t.Errorf("expected joined item fields, got %q / %q", got.ItemName, got.ItemLocation)
	}
}

func TestGetReservationNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetReservation(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetReservation: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestInsertReservationConstraintErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Laptop", "Room", true)
	InsertReservation(ctx, database, newReservation(item.ID, "dupdupdup", base, 1))

	err := InsertReservation(ctx, database, newReservation(item.ID, "dupdupdup", base.Add(5*time.Hour), 1))
	if !errors.Is(err, ErrDuplicateToken) {
		t.Errorf("expected ErrDuplicateToken, got %v", err)
	}

	noName := newReservation(item.ID, "nonamexxx", base.Add(10*time.Hour), 1)
	noName.UserName = ""
	err = InsertReservation(ctx, database, noName)
	if !errors.Is(err, ErrUserNameRequired) {
		t.Errorf("expected ErrUserNameRequired, got %v", err)
	}

	err = InsertReservation(ctx, database, newReservation(999, "orphanxxx", base, 1))
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}

func TestListReservations(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	laptop, _ := CreateItem(ctx, database, "Laptop", "Room A", true)
	camera, _ := CreateItem(ctx, database, "Camera", "Room B", true)

	InsertReservation(ctx, database, newReservation(laptop.ID, "token0001", base.Add(4*time.Hour), 1))
	InsertReservation(ctx, database, newReservation(laptop.ID, "token0002", base, 1))
	InsertReservation(ctx, database, newReservation(camera.ID, "token0003", base, 1))

	all, err := ListReservations(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListReservations: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 reservations, got %d", len(all))
	}

	byItem, _ := ListReservationsForItem(ctx, database, laptop.ID)
	if len(byItem) != 2 {
		t.Fatalf("expected 2 laptop reservations, got %d", len(byItem))
	}
	if byItem[0].Token != "token0002" {
		t.Errorf("expected reservations ordered by start, got %q first", byItem[0].Token)
	}

	filtered, _ := ListReservations(ctx, database, camera.ID)
	if len(filtered) != 1 || filtered[0].ItemName != "Camera" {
		t.Errorf("expected 1 camera reservation, got %v", filtered)
	}
}

func TestDeleteReservation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Laptop", "Room", true)
	r := newReservation(item.ID, "deleteme1", base, 1)
	InsertReservation(ctx, database, r)

	if err := DeleteReservation(ctx, database, r.ID); err != nil {
		t.Fatalf("DeleteReservation: %v", err)
	}
	got, _ := GetReservation(ctx, database, r.ID)
	if got != nil {
		t.Error("expected reservation to be deleted")
	}
}

func TestCountActiveReservations(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Laptop", "Room", true)
	InsertReservation(ctx, database, newReservation(item.ID, "pastxxxxx", base, 1))
	InsertReservation(ctx, database, newReservation(item.ID, "futurexxx", base.Add(48*time.Hour), 1))

	n, err := CountActiveReservations(ctx, database, item.ID, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("CountActiveReservations: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 active reservation, got %d", n)
	}

	reserved, _ := IsItemReservedAt(ctx, database, item.ID, base.Add(30*time.Minute))
	if !reserved {
		t.Error("expected item to be reserved during the first window")
	}
	reserved, _ = IsItemReservedAt(ctx, database, item.ID, base.Add(time.Hour))
	if reserved {
		t.Error("expected item to be free at the exclusive window end")
	}
}
