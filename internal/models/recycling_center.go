package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecyclingCenter is a drop-off facility shown next to the scrap map
type RecyclingCenter struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string      `gorm:"type:varchar(255);not null" json:"name"`
	Address       string      `gorm:"type:varchar(255);not null" json:"address"`
	Phone         string      `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Hours         string      `gorm:"type:varchar(100)" json:"hours,omitempty"`
	Location      Coordinates `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	AcceptedItems []string    `gorm:"type:text;serializer:json" json:"acceptedItems"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time   `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (RecyclingCenter) TableName() string {
	return "recycling_centers"
}

// BeforeCreate assigns a UUID when none is set
func (c *RecyclingCenter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
