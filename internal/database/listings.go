package database

import (
	"context"
	"fmt"
	"time"

	"ewaste-exchange/internal/models"

	"gorm.io/gorm"
)

// FlagAgingListingsAsScrap sets is_scrap_item on every listing created before
// cutoff that is not yet flagged. It returns the ids it selected and the
// number of rows the update changed; a concurrent run may have flipped some
// of them first, so affected can be lower than len(ids).
func (gdb *GormDB) FlagAgingListingsAsScrap(ctx context.Context, cutoff time.Time) ([]string, int64, error) {
	var ids []string
	var affected int64

	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Listing{}).
			Where("is_scrap_item = ? AND created_at < ?", false, cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, batch := range chunk(ids, inBatchSize) {
			result := tx.Model(&models.Listing{}).
				Where("id IN ? AND is_scrap_item = ?", batch, false).
				Update("is_scrap_item", true)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to flag aging listings: %w", err)
	}
	return ids, affected, nil
}

// ListScrapListings returns every listing flagged as scrap, oldest first
func (gdb *GormDB) ListScrapListings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.WithContext(ctx).
		Where("is_scrap_item = ?", true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&listings).Error
	return listings, err
}

// GetListingsByIDs returns the listings with the given ids in no particular order
func (gdb *GormDB) GetListingsByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var listings []models.Listing
	for _, batch := range chunk(ids, inBatchSize) {
		var page []models.Listing
		if err := gdb.db.WithContext(ctx).Where("id IN ?", batch).Find(&page).Error; err != nil {
			return nil, err
		}
		listings = append(listings, page...)
	}
	return listings, nil
}

// CreateListing inserts a listing
func (gdb *GormDB) CreateListing(ctx context.Context, l *models.Listing) error {
	return translate(gdb.db.WithContext(ctx).Create(l).Error)
}
