package enums

import "fmt"

// BookingStatus tracks a booking through its lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusRejected,
	BookingStatusCancelled,
	BookingStatusCompleted,
}

// String returns the literal string for the status.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is known.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

// IsTerminal reports whether no further transition leaves this status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	case BookingStatusPending, BookingStatusConfirmed:
		return false
	}
	return true
}

// CanTransitionTo reports whether moving from s to next is allowed.
//
//	pending   -> confirmed | rejected | cancelled
//	confirmed -> completed
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		switch next {
		case BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled:
			return true
		}
		return false
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return false
	}
	return false
}
