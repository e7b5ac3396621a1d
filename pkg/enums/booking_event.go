package enums

// BookingEventType names the domain events emitted for bookings.
type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking.created"
	BookingEventConfirmed BookingEventType = "booking.confirmed"
	BookingEventRejected  BookingEventType = "booking.rejected"
	BookingEventCancelled BookingEventType = "booking.cancelled"
	BookingEventCompleted BookingEventType = "booking.completed"
)

// EventForStatus maps the status a booking entered to its event type.
func EventForStatus(status BookingStatus) BookingEventType {
	switch status {
	case BookingStatusPending:
		return BookingEventCreated
	case BookingStatusConfirmed:
		return BookingEventConfirmed
	case BookingStatusRejected:
		return BookingEventRejected
	case BookingStatusCancelled:
		return BookingEventCancelled
	case BookingStatusCompleted:
		return BookingEventCompleted
	}
	return BookingEventType("booking." + string(status))
}
