package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, "Laptop", "Conference Room A", true)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Laptop" {
		t.Errorf("expected name 'Laptop', got %q", item.Name)
	}
	if item.Location != "Conference Room A" {
		t.Errorf("expected location 'Conference Room A', got %q", item.Location)
	}
	if !item.Available {
		t.Error("expected item to be available")
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.ID != item.ID {
		t.Fatalf("expected item %d, got %v", item.ID, got)
	}
}

func TestGetItemNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetItem(context.Background(), database, 999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %v", got)
	}
}

func TestCreateItemRejectsEmptyFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateItem(ctx, database, "", "Room", true); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := CreateItem(ctx, database, "Camera", "", true); err == nil {
		t.Error("expected error for empty location")
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "Projector", "Room 1", true)
	CreateItem(ctx, database, "Table", "Room 2", true)
	CreateItem(ctx, database, "Broken Camera", "Room 1", false)

	available, _ := ListItems(ctx, database, ItemFilter{})
	if len(available) != 2 {
		t.Errorf("expected 2 available items, got %d", len(available))
	}

	all, _ := ListItems(ctx, database, ItemFilter{IncludeUnavailable: true})
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}

	room1, _ := ListItems(ctx, database, ItemFilter{Location: "Room 1", IncludeUnavailable: true})
	if len(room1) != 2 {
		t.Errorf("expected 2 items in Room 1, got %d", len(room1))
	}
}

func TestListItemsReservedNow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	busy, _ := CreateItem(ctx, database, "Busy", "Room", true)
	CreateItem(ctx, database, "Free", "Room", true)

	now := time.Date(2025, 1, 10, 11, 0, 0, 0, time.UTC)
	InsertReservation(ctx, database, &model.Reservation{
		ItemID:   busy.ID,
		UserName: "alice",
		Token:    "aaaaaaaaa",
		Start:    now.Add(-time.Hour),
		End:      now.Add(time.Hour),
	})

	items, err := ListItems(ctx, database, ItemFilter{At: now})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, item := range items {
		want := item.ID == busy.ID
		if item.ReservedNow != want {
			t.Errorf("item %q: ReservedNow = %v, want %v", item.Name, item.ReservedNow, want)
		}
	}

	// After the window ends the item is free again.
	later, _ := ListItems(ctx, database, ItemFilter{At: now.Add(time.Hour)})
	for _, item := range later {
		if item.ReservedNow {
			t.Errorf("item %q still reserved after window end", item.Name)
		}
	}
}

func TestSetItemAvailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Microphone", "Studio", true)

	found, err := SetItemAvailable(ctx, database, item.ID, false)
	if err != nil {
		t.Fatalf("SetItemAvailable: %v", err)
	}
	if !found {
		t.Error("expected item to be found")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Available {
		t.Error("expected item to be unavailable")
	}

	found, _ = SetItemAvailable(ctx, database, 999, true)
	if found {
		t.Error("expected missing item to be reported")
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Photo Item", "Room", true)
	imageData := []byte("fake image data")
	SetItemImage(ctx, database, item.ID, imageData, "image/jpeg")

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.ImageMime != "image/jpeg" {
		t.Errorf("expected item image mime, got %q", got.ImageMime)
	}
}
