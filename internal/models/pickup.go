package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PickupStatus is the lifecycle state of a pickup
type PickupStatus string

const (
	PickupStatusScheduled PickupStatus = "scheduled"
	PickupStatusCompleted PickupStatus = "completed"
)

// Pickup ties one scrap listing to a recycling facility visit.
//
// ActiveListingID mirrors ListingID while the pickup is scheduled and is
// cleared on completion. Its unique index allows at most one scheduled pickup
// per listing while keeping any number of completed ones.
type Pickup struct {
	ID              string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID       string       `gorm:"type:varchar(36);not null;index" json:"listingId"`
	SellerID        string       `gorm:"type:varchar(36);not null;index" json:"sellerId"`
	Area            string       `gorm:"type:varchar(100)" json:"area"`
	Colony          string       `gorm:"type:varchar(100)" json:"colony"`
	FacilityName    string       `gorm:"type:varchar(255);not null" json:"facilityName"`
	FacilityAddress string       `gorm:"type:varchar(255);not null" json:"facilityAddress"`
	PickupDate      time.Time    `gorm:"not null" json:"pickupDate"`
	Status          PickupStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	ActiveListingID *string      `gorm:"type:varchar(36);uniqueIndex" json:"-"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Pickup) TableName() string {
	return "pickups"
}

// BeforeCreate assigns a UUID and the active-listing guard for new pickups
func (p *Pickup) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PickupStatusScheduled
	}
	if p.Status == PickupStatusScheduled && p.ActiveListingID == nil {
		id := p.ListingID
		p.ActiveListingID = &id
	}
	return nil
}

// IsScheduled reports whether the pickup is still pending
func (p *Pickup) IsScheduled() bool {
	return p.Status == PickupStatusScheduled
}

// MarkCompleted moves the pickup to its terminal state. Repeated calls keep
// the first completion time.
func (p *Pickup) MarkCompleted(at time.Time) {
	p.Status = PickupStatusCompleted
	p.ActiveListingID = nil
	if p.CompletedAt == nil {
		p.CompletedAt = &at
	}
}
