package enums

import "fmt"

// BookingAction is a caller-initiated change to a booking.
type BookingAction string

const (
	BookingActionApprove  BookingAction = "approve"
	BookingActionReject   BookingAction = "reject"
	BookingActionCancel   BookingAction = "cancel"
	BookingActionComplete BookingAction = "complete"
)

// BookingActor identifies which party may perform an action.
type BookingActor string

const (
	BookingActorOwner  BookingActor = "owner"
	BookingActorRenter BookingActor = "renter"
	BookingActorSystem BookingActor = "system"
)

// TargetStatus returns the status an action moves a booking into.
func (a BookingAction) TargetStatus() (BookingStatus, error) {
	switch a {
	case BookingActionApprove:
		return BookingStatusConfirmed, nil
	case BookingActionReject:
		return BookingStatusRejected, nil
	case BookingActionCancel:
		return BookingStatusCancelled, nil
	case BookingActionComplete:
		return BookingStatusCompleted, nil
	}
	return "", fmt.Errorf("unknown booking action %q", a)
}

// Actor returns the only party allowed to perform the action.
func (a BookingAction) Actor() BookingActor {
	switch a {
	case BookingActionApprove, BookingActionReject:
		return BookingActorOwner
	case BookingActionCancel:
		return BookingActorRenter
	case BookingActionComplete:
		return BookingActorSystem
	}
	return ""
}
