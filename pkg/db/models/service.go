package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

// Service is a rentable item listed by its owner.
type Service struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	Name          string                `gorm:"column:name;not null"`
	Description   string                `gorm:"column:description;not null"`
	Category      enums.ServiceCategory `gorm:"column:category;not null;index"`
	PricePerDay   decimal.Decimal       `gorm:"column:price_per_day;type:numeric(12,2);not null"`
	DiscountPrice decimal.NullDecimal   `gorm:"column:discount_price;type:numeric(12,2)"`
	Quantity      int                   `gorm:"column:quantity;not null"`
	AvailableFrom time.Time             `gorm:"column:available_from;not null"`
	AvailableTo   time.Time             `gorm:"column:available_to;not null"`
	ImageURL      string                `gorm:"column:image_url;not null"`
	SearchText    string                `gorm:"column:search_text;not null;default:''"`
	Owner         *User                 `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Service) TableName() string { return "services" }

// FoldSearch lowercases text for search_text and for search terms alike, so
// matching does not depend on how the database folds non-ASCII case.
func FoldSearch(s string) string {
	return strings.ToLower(s)
}

// BeforeSave keeps search_text in step with name and description.
func (s *Service) BeforeSave(*gorm.DB) error {
	s.SearchText = FoldSearch(s.Name + "\n" + s.Description)
	return nil
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
