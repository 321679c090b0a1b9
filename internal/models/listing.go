package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing is an item put up for sale by a seller. Once IsScrapItem is set the
// listing has aged out of the marketplace and is eligible for pickup.
type Listing struct {
	ID              string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title           string  `gorm:"type:varchar(255);not null" json:"title"`
	Description     string  `gorm:"type:text" json:"description,omitempty"`
	ImageURL        string  `gorm:"type:text" json:"image,omitempty"`
	Price           float64 `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Grade           string  `gorm:"type:varchar(20)" json:"grade,omitempty"`
	Location        string  `gorm:"type:varchar(255)" json:"location,omitempty"`
	Category        string  `gorm:"type:varchar(50);index" json:"category,omitempty"`
	SellerID        string  `gorm:"type:varchar(36);not null;index" json:"sellerId"`
	EstimatedWeight float64 `gorm:"not null;default:0" json:"estimatedWeight"`

	IsScrapItem bool `gorm:"not null;default:false;index" json:"isScrapItem"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate assigns a UUID when none is set
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// IsAgedOut reports whether the listing was created before cutoff
func (l *Listing) IsAgedOut(cutoff time.Time) bool {
	return l.CreatedAt.Before(cutoff)
}
