package reservation

import "errors"

// Kind classifies a rejection so that callers can map it to a response.
type Kind int

// Rejection kinds.
const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
)

// Error is a rejection with a human-readable reason. Reasons are safe to
// show to the caller.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Rejections returned by Validate and the Manager.
var (
	ErrUserNameRequired = &Error{KindValidation, "user name required"}
	ErrDatesRequired    = &Error{KindValidation, "dates required"}
	ErrInvalidDate      = &Error{KindValidation, "invalid date"}
	ErrEndBeforeStart   = &Error{KindValidation, "end date must be after start date"}
	ErrStartInPast      = &Error{KindValidation, "start date must be in the future"}

	ErrItemUnavailable = &Error{KindConflict, "item is not available for reservation"}
	ErrOverlap         = &Error{KindConflict, "item already reserved for this period"}
	ErrItemInUse       = &Error{KindConflict, "item has active reservations"}

	ErrItemNotFound        = &Error{KindNotFound, "item not found"}
	ErrReservationNotFound = &Error{KindNotFound, "reservation not found"}

	ErrTokenMismatch = &Error{KindForbidden, "unique reservation ID does not match"}
)

// KindOf returns the kind of err, or KindInternal if err is not a rejection.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
