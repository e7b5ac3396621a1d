package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
)

// Event is the payload published whenever a booking is created or changes status.
type Event struct {
	EventType  enums.BookingEventType `json:"eventType"`
	BookingID  uuid.UUID              `json:"bookingId"`
	ServiceID  uuid.UUID              `json:"serviceId"`
	RenterID   uuid.UUID              `json:"renterId"`
	OwnerID    uuid.UUID              `json:"ownerId"`
	Status     enums.BookingStatus    `json:"status"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func eventFor(b *models.Booking, ownerID uuid.UUID, at time.Time) Event {
	return Event{
		EventType:  enums.EventForStatus(b.Status),
		BookingID:  b.ID,
		ServiceID:  b.ServiceID,
		RenterID:   b.RenterID,
		OwnerID:    ownerID,
		Status:     b.Status,
		OccurredAt: at.UTC(),
	}
}

// EventPublisher delivers booking events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events; used when publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type messagePublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// PubSubPublisher encodes events as JSON messages tagged with an event_type attribute.
type PubSubPublisher struct {
	client messagePublisher
}

func NewPubSubPublisher(client messagePublisher) *PubSubPublisher {
	return &PubSubPublisher{client: client}
}

func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding booking event: %w", err)
	}
	_, err = p.client.Publish(ctx, data, map[string]string{
		"event_type": string(event.EventType),
	})
	return err
}
