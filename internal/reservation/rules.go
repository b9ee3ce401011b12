package reservation

import (
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/model"
)

// ClockSkew is how far in the past a start date may lie and still be
// accepted.
const ClockSkew = time.Minute

// Request is an incoming reservation request with dates as sent by the
// client.
type Request struct {
	UserName  string `json:"userName"`
	StartDate string `json:"reservationStartDate"`
	EndDate   string `json:"reservationEndDate"`
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows share at least one instant.
// Windows that only touch (a.End == b.Start) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses a client-supplied timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Validate decides whether req may be booked on item given the item's
// existing reservations. Checks run in a fixed order and the first failure
// is returned. Validate has no side effects.
func Validate(item *model.Item, req Request, existing []model.Reservation, now time.Time) (Window, error) {
	if strings.TrimSpace(req.UserName) == "" {
		return Window{}, ErrUserNameRequired
	}

	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return Window{}, ErrDatesRequired
	}

	start, err := ParseDate(req.StartDate)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		return Window{}, err
	}
	// Stored precision is one second.
	w := Window{Start: start.Truncate(time.Second), End: end.Truncate(time.Second)}
	if !w.Start.Before(w.End) {
		return Window{}, ErrEndBeforeStart
	}

	if w.Start.Before(now.Add(-ClockSkew)) {
		return Window{}, ErrStartInPast
	}

	if !item.Available {
		return Window{}, ErrItemUnavailable
	}

	for _, r := range existing {
		if r.ItemID != item.ID {
			continue
		}
		if w.Overlaps(Window{Start: r.Start, End: r.End}) {
			return Window{}, ErrOverlap
		}
	}

	return w, nil
}
