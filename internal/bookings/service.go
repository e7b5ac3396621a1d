package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
	"github.com/angelmondragon/gearshare-backend/pkg/validate"
)

const completionBatchSize = 200

// Service is the booking engine.
type Service interface {
	Create(ctx context.Context, renter pkgAuth.Identity, input CreateInput) (*BookingDTO, error)
	Approve(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error)
	Reject(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error)
	Cancel(ctx context.Context, renter pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error)
	Get(ctx context.Context, caller pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error)
	ListForRenter(ctx context.Context, caller pkgAuth.Identity, renterID uuid.UUID) ([]BookingDTO, error)
	ListForOwnedServices(ctx context.Context, owner pkgAuth.Identity) ([]BookingDTO, error)
	CompleteDue(ctx context.Context) (int, error)
}

type repository interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.BookingStatus, at time.Time) (bool, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID) ([]models.Booking, error)
	ListByServiceOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error)
	ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]models.Booking, error)
}

type serviceLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

type ServiceParams struct {
	Repo      repository
	Services  serviceLookup
	Publisher EventPublisher
	Metrics   *metrics.BookingMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	repo      repository
	services  serviceLookup
	publisher EventPublisher
	metrics   *metrics.BookingMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("service lookup required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = NopPublisher{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		services:  params.Services,
		publisher: publisher,
		metrics:   params.Metrics,
		logg:      logg,
		now:       now,
	}, nil
}

// Create validates the request against the listing and stores a pending booking.
// Overlapping bookings are not checked; quantity is bounded per booking only.
func (s *service) Create(ctx context.Context, renter pkgAuth.Identity, input CreateInput) (*BookingDTO, error) {
	if renter.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var v validate.Errors
	var listing *models.Service
	if raw := v.Required("serviceId", input.ServiceID); raw != "" {
		serviceID, err := uuid.Parse(raw)
		if err != nil {
			v.Add("serviceId", "serviceId must be a valid id")
		} else {
			listing, err = s.services.FindByID(ctx, serviceID)
			if err != nil {
				return nil, err
			}
		}
	}

	userName := v.Required("userName", input.UserName)
	phone := v.Required("phoneNumber", input.PhoneNumber)
	rental, okRental := v.Date("rentalDate", input.RentalDate)
	ret, okReturn := v.Date("returnDate", input.ReturnDate)
	if okRental && okReturn && !ret.After(rental) {
		v.Add("returnDate", "returnDate must be after rentalDate")
	}
	quantity := v.MinInt("quantity", string(input.Quantity), 1)
	if !v.Has("quantity") && listing != nil && quantity > listing.Quantity {
		v.Add("quantity", fmt.Sprintf("quantity must not exceed %d", listing.Quantity))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	total := TotalPrice(listing.PricePerDay, quantity, rental, ret)
	if total.GreaterThan(validate.MaxAmount) {
		v.Add("quantity", "total price exceeds the maximum booking amount of "+validate.MaxAmount.StringFixed(2))
		return nil, v.Err()
	}

	var notes *string
	if input.Notes != nil {
		if trimmed := strings.TrimSpace(*input.Notes); trimmed != "" {
			notes = &trimmed
		}
	}

	b := &models.Booking{
		RenterID:    renter.UserID,
		ServiceID:   listing.ID,
		UserName:    userName,
		PhoneNumber: phone,
		RentalDate:  rental,
		ReturnDate:  ret,
		Quantity:    quantity,
		Notes:       notes,
		TotalPrice:  total,
		Status:      enums.BookingStatusPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	b.Service = listing

	s.recordTransition(ctx, b, listing.OwnerID)
	dto := FromModel(b)
	return &dto, nil
}

func (s *service) Approve(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, owner, id, enums.BookingActionApprove)
}

func (s *service) Reject(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, owner, id, enums.BookingActionReject)
}

func (s *service) Cancel(ctx context.Context, renter pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, renter, id, enums.BookingActionCancel)
}

func (s *service) transition(ctx context.Context, caller pkgAuth.Identity, id uuid.UUID, action enums.BookingAction) (*BookingDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, b, action); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, b, action); err != nil {
		return nil, err
	}
	dto := FromModel(b)
	return &dto, nil
}

func authorize(caller pkgAuth.Identity, b *models.Booking, action enums.BookingAction) error {
	switch action.Actor() {
	case enums.BookingActorOwner:
		if b.Service == nil || b.Service.OwnerID != caller.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the service owner can "+string(action)+" this booking")
		}
	case enums.BookingActorRenter:
		if b.RenterID != caller.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the renter can "+string(action)+" this booking")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "action not available to users")
	}
	return nil
}

// apply performs the status change as a compare-and-set on the current status.
func (s *service) apply(ctx context.Context, b *models.Booking, action enums.BookingAction) error {
	target, err := action.TargetStatus()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve booking action")
	}
	if !b.Status.CanTransitionTo(target) {
		return transitionError(b.Status, target)
	}

	at := s.now().UTC()
	ok, err := s.repo.UpdateStatus(ctx, b.ID, b.Status, target, at)
	if err != nil {
		return err
	}
	if !ok {
		current, err := s.repo.FindByID(ctx, b.ID)
		if err != nil {
			return err
		}
		return transitionError(current.Status, target)
	}

	b.Status = target
	b.DecidedAt = &at
	b.UpdatedAt = at

	var ownerID uuid.UUID
	if b.Service != nil {
		ownerID = b.Service.OwnerID
	}
	s.recordTransition(ctx, b, ownerID)
	return nil
}

func transitionError(from, to enums.BookingStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("booking is %s and cannot become %s", from, to)).
		WithDetails(map[string]string{"from": from.String(), "to": to.String()})
}

// recordTransition counts the change and publishes its event. Publish errors are logged only.
func (s *service) recordTransition(ctx context.Context, b *models.Booking, ownerID uuid.UUID) {
	s.metrics.IncTransition(b.Status)

	event := eventFor(b, ownerID, s.now())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"booking_id": b.ID.String(),
		"service_id": b.ServiceID.String(),
		"status":     b.Status.String(),
		"event_type": string(event.EventType),
	})
	s.logg.Info(ctx, "bookings.status_changed")

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logg.Error(ctx, "bookings.event_publish_failed", err)
	}
}

func (s *service) Get(ctx context.Context, caller pkgAuth.Identity, id uuid.UUID) (*BookingDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := b.Service != nil && b.Service.OwnerID == caller.UserID
	if b.RenterID != caller.UserID && !isOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	dto := FromModel(b)
	return &dto, nil
}

func (s *service) ListForRenter(ctx context.Context, caller pkgAuth.Identity, renterID uuid.UUID) ([]BookingDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if caller.UserID != renterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "bookings can only be listed by their renter")
	}
	rows, err := s.repo.ListByRenter(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return fromModels(rows), nil
}

func (s *service) ListForOwnedServices(ctx context.Context, owner pkgAuth.Identity) ([]BookingDTO, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByServiceOwner(ctx, owner.UserID)
	if err != nil {
		return nil, err
	}
	return fromModels(rows), nil
}

// CompleteDue moves confirmed bookings whose return date has passed to completed.
// Bookings changed concurrently are skipped; per-booking failures are combined.
func (s *service) CompleteDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDueForCompletion(ctx, s.now().UTC(), completionBatchSize)
	if err != nil {
		return 0, err
	}

	completed := 0
	var errs error
	for i := range due {
		b := &due[i]
		err := s.apply(ctx, b, enums.BookingActionComplete)
		switch {
		case err == nil:
			completed++
		case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
			continue
		default:
			errs = multierr.Append(errs, fmt.Errorf("complete booking %s: %w", b.ID, err))
		}
	}
	return completed, errs
}
