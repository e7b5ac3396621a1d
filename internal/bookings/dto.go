package bookings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

// CreateInput is the booking request body.
type CreateInput struct {
	ServiceID   string      `json:"serviceId"`
	UserName    string      `json:"userName"`
	PhoneNumber string      `json:"phoneNumber"`
	RentalDate  string      `json:"rentalDate"`
	ReturnDate  string      `json:"returnDate"`
	Quantity    NumericText `json:"quantity"`
	Notes       *string     `json:"notes,omitempty"`
}

// NumericText is a number field that form-driven clients may send either as a
// JSON number or as the input's string value. It is validated later with the
// other fields.
type NumericText string

func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("must be a number or numeric string")
	}
	*n = NumericText(num.String())
	return nil
}

type ServiceSummary struct {
	ID          uuid.UUID             `json:"id"`
	OwnerID     uuid.UUID             `json:"ownerId"`
	Name        string                `json:"name"`
	Category    enums.ServiceCategory `json:"category"`
	ImageURL    string                `json:"imageUrl"`
	PricePerDay decimal.Decimal       `json:"pricePerDay"`
}

// BookingDTO is the public shape of a booking.
type BookingDTO struct {
	ID          uuid.UUID           `json:"id"`
	RenterID    uuid.UUID           `json:"renterId"`
	ServiceID   uuid.UUID           `json:"serviceId"`
	Service     *ServiceSummary     `json:"service,omitempty"`
	UserName    string              `json:"userName"`
	PhoneNumber string              `json:"phoneNumber"`
	RentalDate  time.Time           `json:"rentalDate"`
	ReturnDate  time.Time           `json:"returnDate"`
	Quantity    int                 `json:"quantity"`
	Notes       *string             `json:"notes,omitempty"`
	TotalPrice  decimal.Decimal     `json:"totalPrice"`
	Status      enums.BookingStatus `json:"status"`
	DecidedAt   *time.Time          `json:"decidedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func FromModel(b *models.Booking) BookingDTO {
	dto := BookingDTO{
		ID:          b.ID,
		RenterID:    b.RenterID,
		ServiceID:   b.ServiceID,
		UserName:    b.UserName,
		PhoneNumber: b.PhoneNumber,
		RentalDate:  b.RentalDate,
		ReturnDate:  b.ReturnDate,
		Quantity:    b.Quantity,
		Notes:       b.Notes,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,
		DecidedAt:   b.DecidedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if s := b.Service; s != nil {
		dto.Service = &ServiceSummary{
			ID:          s.ID,
			OwnerID:     s.OwnerID,
			Name:        s.Name,
			Category:    s.Category,
			ImageURL:    s.ImageURL,
			PricePerDay: s.PricePerDay,
		}
	}
	return dto
}

func fromModels(rows []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
