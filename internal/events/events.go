// Package events publishes reservation lifecycle events to a message broker.
package events

import (
	"context"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// Type is the event name, also used as the routing key.
type Type string

// Event types.
const (
	TypeReservationCreated   Type = "reservation.created"
	TypeReservationCancelled Type = "reservation.cancelled"
	TypeItemCreated          Type = "item.created"
	TypeItemDeleted          Type = "item.deleted"
)

// Event is the message payload. The reservation token is never included.
type Event struct {
	Type          Type       `json:"type"`
	ItemID        int64      `json:"itemId"`
	ItemName      string     `json:"itemName,omitempty"`
	ItemLocation  string     `json:"itemLocation,omitempty"`
	ReservationID int64      `json:"reservationId,omitempty"`
	UserName      string     `json:"userName,omitempty"`
	Start         *time.Time `json:"reservationStartDate,omitempty"`
	End           *time.Time `json:"reservationEndDate,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// ReservationEvent builds a reservation event from r.
func ReservationEvent(t Type, r *model.Reservation, at time.Time) Event {
	start, end := r.Start, r.End
	return Event{
		Type:          t,
		ItemID:        r.ItemID,
		ItemName:      r.ItemName,
		ItemLocation:  r.ItemLocation,
		ReservationID: r.ID,
		UserName:      r.UserName,
		Start:         &start,
		End:           &end,
		OccurredAt:    at.UTC(),
	}
}

// ItemEvent builds an item event from item.
func ItemEvent(t Type, item *model.Item, at time.Time) Event {
	return Event{
		Type:         t,
		ItemID:       item.ID,
		ItemName:     item.Name,
		ItemLocation: item.Location,
		OccurredAt:   at.UTC(),
	}
}

// Discard drops every event. It is used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
func (Discard) Close() error { return nil }
