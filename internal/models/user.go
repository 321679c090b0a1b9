package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType is the marketplace role of an account
type UserType string

const (
	UserTypeSeller UserType = "seller"
	UserTypeBuyer  UserType = "buyer"
)

// Coordinates is a WGS84 point
type Coordinates struct {
	Lat float64 `gorm:"column:lat" json:"lat"`
	Lng float64 `gorm:"column:lng" json:"lng"`
}

// Address is the hierarchical location of a user: city > area > colony
type Address struct {
	City        string      `gorm:"type:varchar(100);index" json:"city"`
	Area        string      `gorm:"type:varchar(100);index" json:"area"`
	Colony      string      `gorm:"type:varchar(100)" json:"colony"`
	Coordinates Coordinates `gorm:"embedded" json:"coordinates"`
}

// User is a marketplace account. Only sellers own listings.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"lastName"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	UserType     UserType  `gorm:"type:varchar(10);not null;default:'seller'" json:"userType"`
	Address      Address   `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName is the display name shown on the map
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsSeller reports whether the account can own listings
func (u *User) IsSeller() bool {
	return u.UserType == UserTypeSeller
}
