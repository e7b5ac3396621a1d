package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

// ServiceInput is the raw listing form. Values stay strings so every field
// can be validated and reported together.
type ServiceInput struct {
	Name          string
	Description   string
	Category      string
	PricePerDay   string
	DiscountPrice string
	Quantity      string
	AvailableFrom string
	AvailableTo   string
}

// Filter narrows the public listing query.
type Filter struct {
	Category string
	Search   string
}

type OwnerSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ServiceDTO is the public shape of a listing.
type ServiceDTO struct {
	ID            uuid.UUID             `json:"id"`
	OwnerID       uuid.UUID             `json:"ownerId"`
	Owner         *OwnerSummary         `json:"owner,omitempty"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Category      enums.ServiceCategory `json:"category"`
	PricePerDay   decimal.Decimal       `json:"pricePerDay"`
	DiscountPrice *decimal.Decimal      `json:"discountPrice,omitempty"`
	Quantity      int                   `json:"quantity"`
	AvailableFrom time.Time             `json:"availableFrom"`
	AvailableTo   time.Time             `json:"availableTo"`
	ImageURL      string                `json:"imageUrl"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

func FromModel(m *models.Service) ServiceDTO {
	dto := ServiceDTO{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		Name:          m.Name,
		Description:   m.Description,
		Category:      m.Category,
		PricePerDay:   m.PricePerDay,
		Quantity:      m.Quantity,
		AvailableFrom: m.AvailableFrom,
		AvailableTo:   m.AvailableTo,
		ImageURL:      m.ImageURL,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.DiscountPrice.Valid {
		d := m.DiscountPrice.Decimal
		dto.DiscountPrice = &d
	}
	if m.Owner != nil {
		dto.Owner = &OwnerSummary{ID: m.Owner.ID, Username: m.Owner.Username}
	}
	return dto
}

func fromModels(rows []models.Service) []ServiceDTO {
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// fields holds a validated listing form.
type fields struct {
	name          string
	description   string
	category      enums.ServiceCategory
	pricePerDay   decimal.Decimal
	discountPrice decimal.NullDecimal
	quantity      int
	availableFrom time.Time
	availableTo   time.Time
}

func (f fields) apply(m *models.Service) {
	m.Name = f.name
	m.Description = f.description
	m.Category = f.category
	m.PricePerDay = f.pricePerDay
	m.DiscountPrice = f.discountPrice
	m.Quantity = f.quantity
	m.AvailableFrom = f.availableFrom
	m.AvailableTo = f.availableTo
}
