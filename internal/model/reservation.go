package model

import "time"

// Reservation is a claim on an item by a named user for [Start, End).
type Reservation struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	UserName  string    `json:"userName"`
	Token     string    `json:"-"`
	Start     time.Time `json:"reservationStartDate"`
	End       time.Time `json:"reservationEndDate"`
	CreatedAt time.Time `json:"createdAt"`

	// Joined fields (not always populated).
	ItemName     string `json:"itemName,omitempty"`
	ItemLocation string `json:"itemLocation,omitempty"`
}

// ActiveAt reports whether the reservation covers instant t.
func (r Reservation) ActiveAt(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
