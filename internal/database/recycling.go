package database

import (
	"context"

	"ewaste-exchange/internal/models"
)

// ListRecyclingCenters returns all centers, newest first
func (gdb *GormDB) ListRecyclingCenters(ctx context.Context) ([]models.RecyclingCenter, error) {
	var centers []models.RecyclingCenter
	err := gdb.db.WithContext(ctx).Order("created_at DESC").Find(&centers).Error
	return centers, err
}

// GetRecyclingCenter retrieves a center by ID
func (gdb *GormDB) GetRecyclingCenter(ctx context.Context, id string) (*models.RecyclingCenter, error) {
	var center models.RecyclingCenter
	if err := gdb.db.WithContext(ctx).Where("id = ?", id).First(&center).Error; err != nil {
		return nil, translate(err)
	}
	return &center, nil
}

// CreateRecyclingCenter inserts a center
func (gdb *GormDB) CreateRecyclingCenter(ctx context.Context, c *models.RecyclingCenter) error {
	return translate(gdb.db.WithContext(ctx).Create(c).Error)
}
