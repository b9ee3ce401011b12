package model

import "time"

// Item is a shared physical item that can be reserved.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Available bool      `json:"available"`
	ImageMime string    `json:"imageMime,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// Derived from reservations covering the current instant (not stored).
	ReservedNow bool `json:"reservedNow"`
}
