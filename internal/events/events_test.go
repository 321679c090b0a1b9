package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ewaste-exchange/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPickupEventPayload(t *testing.T) {
	date := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)
	p := &models.Pickup{
		ID:              "p1",
		ListingID:       "l1",
		SellerID:        "s1",
		Area:            "Kothrud",
		FacilityName:    "Green Recycling Facility",
		FacilityAddress: "123 Green Street, City",
		PickupDate:      date,
		Status:          models.PickupStatusScheduled,
	}

	raw, err := json.Marshal(NewPickupEvent(p, at))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "p1", decoded["pickupId"])
	assert.Equal(t, "scheduled", decoded["status"])
	assert.Equal(t, "2026-06-02T00:00:00Z", decoded["pickupDate"])
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}
	assert.NoError(t, pub.Publish(context.Background(), SubjectPickupScheduled, struct{}{}))
}
