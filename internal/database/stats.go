package database

import (
	"context"

	"ewaste-exchange/internal/models"
)

// Stats is a snapshot of row counts for the admin dashboard
type Stats struct {
	Listings         int64             `json:"listings"`
	ScrapListings    int64             `json:"scrapListings"`
	Sellers          int64             `json:"sellers"`
	PickupsByStatus  map[string]int64  `json:"pickupsByStatus"`
	RecyclingCenters int64             `json:"recyclingCenters"`
	RecentScrapRuns  []models.ScrapRun `json:"recentScrapRuns"`
}

// GetStats counts listings, sellers and pickups
func (gdb *GormDB) GetStats(ctx context.Context) (*Stats, error) {
	db := gdb.db.WithContext(ctx)
	stats := &Stats{PickupsByStatus: make(map[string]int64)}

	if err := db.Model(&models.Listing{}).Count(&stats.Listings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Listing{}).Where("is_scrap_item = ?", true).Count(&stats.ScrapListings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("user_type = ?", models.UserTypeSeller).Count(&stats.Sellers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.RecyclingCenter{}).Count(&stats.RecyclingCenters).Error; err != nil {
		return nil, err
	}

	var statusCounts []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Pickup{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		stats.PickupsByStatus[sc.Status] = sc.Count
	}

	runs, err := gdb.RecentScrapRuns(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentScrapRuns = runs

	return stats, nil
}

// RecordScrapRun stores a classification run
func (gdb *GormDB) RecordScrapRun(ctx context.Context, run *models.ScrapRun) error {
	return gdb.db.WithContext(ctx).Create(run).Error
}

// RecentScrapRuns returns the latest classification runs
func (gdb *GormDB) RecentScrapRuns(ctx context.Context, limit int) ([]models.ScrapRun, error) {
	var runs []models.ScrapRun
	err := gdb.db.WithContext(ctx).Order("executed_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
