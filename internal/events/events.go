package events

import (
	"context"
	"time"

	"ewaste-exchange/internal/models"
)

// Subjects for pickup lifecycle events
const (
	SubjectPickupScheduled = "pickups.scheduled"
	SubjectPickupCompleted = "pickups.completed"
)

// Publisher sends an event payload on a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// PickupEvent is the payload of both pickup subjects
type PickupEvent struct {
	PickupID        string              `json:"pickupId"`
	ListingID       string              `json:"listingId"`
	SellerID        string              `json:"sellerId"`
	Area            string              `json:"area"`
	Colony          string              `json:"colony"`
	FacilityName    string              `json:"facilityName"`
	FacilityAddress string              `json:"facilityAddress"`
	PickupDate      time.Time           `json:"pickupDate"`
	Status          models.PickupStatus `json:"status"`
	OccurredAt      time.Time           `json:"occurredAt"`
}

// NewPickupEvent builds the event for p
func NewPickupEvent(p *models.Pickup, at time.Time) PickupEvent {
	return PickupEvent{
		PickupID:        p.ID,
		ListingID:       p.ListingID,
		SellerID:        p.SellerID,
		Area:            p.Area,
		Colony:          p.Colony,
		FacilityName:    p.FacilityName,
		FacilityAddress: p.FacilityAddress,
		PickupDate:      p.PickupDate,
		Status:          p.Status,
		OccurredAt:      at,
	}
}

// NoopPublisher drops every event; used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
