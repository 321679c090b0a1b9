package database

import (
	"context"
	"sort"
	"time"

	"ewaste-exchange/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetPickupsByListingIDs returns all pickups, of any status, for the given listings
func (gdb *GormDB) GetPickupsByListingIDs(ctx context.Context, listingIDs []string) ([]models.Pickup, error) {
	if len(listingIDs) == 0 {
		return nil, nil
	}
	var pickups []models.Pickup
	for _, batch := range chunk(listingIDs, inBatchSize) {
		var page []models.Pickup
		if err := gdb.db.WithContext(ctx).
			Where("listing_id IN ?", batch).
			Order("created_at ASC").
			Find(&page).Error; err != nil {
			return nil, err
		}
		pickups = append(pickups, page...)
	}
	// batches are each ordered; restore the overall order
	sort.SliceStable(pickups, func(i, j int) bool {
		return pickups[i].CreatedAt.Before(pickups[j].CreatedAt)
	})
	return pickups, nil
}

// CreatePickups inserts the batch in one transaction. Any failure, including
// a second scheduled pickup for a listing, rolls the whole batch back.
func (gdb *GormDB) CreatePickups(ctx context.Context, pickups []*models.Pickup) error {
	if len(pickups) == 0 {
		return nil
	}
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pickups {
			if err := tx.Create(p).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

// GetPickupByID retrieves a pickup by ID
func (gdb *GormDB) GetPickupByID(ctx context.Context, id string) (*models.Pickup, error) {
	var pickup models.Pickup
	if err := gdb.db.WithContext(ctx).Where("id = ?", id).First(&pickup).Error; err != nil {
		return nil, translate(err)
	}
	return &pickup, nil
}

// CompletePickup marks the pickup completed and returns the stored row.
// changed is false when the pickup was already completed; the row is then
// returned untouched.
func (gdb *GormDB) CompletePickup(ctx context.Context, id string, at time.Time) (*models.Pickup, bool, error) {
	var pickup models.Pickup
	changed := false
	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&pickup).Error; err != nil {
			return translate(err)
		}
		if !pickup.IsScheduled() {
			return nil
		}
		pickup.MarkCompleted(at)
		if err := tx.Model(&pickup).
			Select("status", "active_listing_id", "completed_at", "updated_at").
			Updates(&pickup).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &pickup, changed, nil
}
