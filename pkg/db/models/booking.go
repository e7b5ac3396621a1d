package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

// Booking is a renter's reservation of a service for a date range.
type Booking struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RenterID    uuid.UUID           `gorm:"column:renter_id;type:uuid;not null;index"`
	ServiceID   uuid.UUID           `gorm:"column:service_id;type:uuid;not null;index"`
	UserName    string              `gorm:"column:user_name;not null"`
	PhoneNumber string              `gorm:"column:phone_number;not null"`
	RentalDate  time.Time           `gorm:"column:rental_date;not null"`
	ReturnDate  time.Time           `gorm:"column:return_date;not null"`
	Quantity    int                 `gorm:"column:quantity;not null"`
	Notes       *string             `gorm:"column:notes"`
	TotalPrice  decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status      enums.BookingStatus `gorm:"column:status;not null;index"`
	DecidedAt   *time.Time          `gorm:"column:decided_at"`
	Service     *Service            `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Renter      *User               `gorm:"foreignKey:RenterID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
