package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/gearshare-backend/api/responses"
	"github.com/angelmondragon/gearshare-backend/api/validators"
	"github.com/angelmondragon/gearshare-backend/internal/bookings"
	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
)

func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "booking service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		var body bookings.CreateInput
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), identity, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func BookingDetail(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc, logg, bookings.Service.Get)
}

func BookingApprove(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc, logg, bookings.Service.Approve)
}

func BookingReject(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc, logg, bookings.Service.Reject)
}

// BookingCancel backs DELETE /bookings/{id}: the booking is kept with status cancelled.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc, logg, bookings.Service.Cancel)
}

type bookingOp func(svc bookings.Service, ctx context.Context, caller pkgAuth.Identity, id uuid.UUID) (*bookings.BookingDTO, error)

func bookingAction(svc bookings.Service, logg *logger.Logger, op bookingOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "booking service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := op(svc, r.Context(), identity, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

func BookingsForRenter(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "booking service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		renterID, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListForRenter(r.Context(), identity, renterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func BookingsForMyServices(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "booking service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		items, err := svc.ListForOwnedServices(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
