package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/erazemk/izposoja/internal/model"
)

func TestNewPublishing(t *testing.T) {
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	r := &model.Reservation{
		ID:       7,
		ItemID:   3,
		ItemName: "Laptop",
		UserName: "alice",
		Token:    "secret123",
		Start:    start,
		End:      start.Add(2 * time.Hour),
	}

	msg, err := newPublishing(ReservationEvent(TypeReservationCreated, r, start))
	if err != nil {
		t.Fatalf("newPublishing: %v", err)
	}
	if msg.ContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", msg.ContentType)
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Errorf("expected persistent delivery, got %d", msg.DeliveryMode)
	}
	if msg.MessageId == "" {
		t.Error("expected message id")
	}

	// The cancellation token must never leave the process.
	if strings.Contains(string(msg.Body), "secret123") {
		t.Error("event body contains the reservation token")
	}

	var decoded Event
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if decoded.Type != TypeReservationCreated || decoded.ReservationID != 7 || decoded.ItemID != 3 {
		t.Errorf("unexpected event %+v", decoded)
	}
	if decoded.Start == nil || !decoded.Start.Equal(start) {
		t.Errorf("expected start %s, got %v", start, decoded.Start)
	}
}
