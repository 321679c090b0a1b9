package models

import "time"

// ScrapRun records a classification run that flagged at least one listing
type ScrapRun struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Trigger      string    `gorm:"type:varchar(20);not null" json:"trigger"`
	Cutoff       time.Time `gorm:"not null" json:"cutoff"`
	FlaggedCount int64     `gorm:"not null" json:"flaggedCount"`
	DurationMs   int64     `gorm:"not null" json:"durationMs"`
	ExecutedAt   time.Time `gorm:"not null;autoCreateTime;index" json:"executedAt"`
}

// TableName specifies the table name
func (ScrapRun) TableName() string {
	return "scrap_runs"
}

// ScrapRun trigger constants
const (
	ScrapTriggerSchedule = "schedule"
	ScrapTriggerManual   = "manual"
)
