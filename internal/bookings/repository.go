package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gearshare-backend/pkg/db"
	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

const notFoundMessage = "booking not found"

// Repository persists bookings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, b *models.Booking) error {
	return db.MapError(r.db.WithContext(ctx).Omit("Service", "Renter").Create(b).Error, notFoundMessage)
}

// FindByID loads a booking together with its service.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Preload("Service").First(&b, "id = ?", id).Error; err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return &b, nil
}

// UpdateStatus moves a booking from one status to another only if it is still
// in the expected status. It reports false when another writer got there first.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.BookingStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"decided_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, db.MapError(res.Error, notFoundMessage)
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) ListByRenter(ctx context.Context, renterID uuid.UUID) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return rows, nil
}

// ListByServiceOwner returns bookings placed against any service the owner lists.
func (r *Repository) ListByServiceOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("services.owner_id = ?", ownerID).
		Order("bookings.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return rows, nil
}

// ListDueForCompletion returns confirmed bookings whose return date has passed.
func (r *Repository) ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("status = ? AND return_date < ?", enums.BookingStatusConfirmed, now).
		Order("return_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return rows, nil
}
