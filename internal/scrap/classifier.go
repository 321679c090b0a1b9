package scrap

import (
	"context"
	"fmt"
	"time"

	"ewaste-exchange/internal/models"

	"go.uber.org/zap"
)

// FlagStore is the storage the classifier needs
type FlagStore interface {
	FlagAgingListingsAsScrap(ctx context.Context, cutoff time.Time) ([]string, int64, error)
	RecordScrapRun(ctx context.Context, run *models.ScrapRun) error
}

// FlagListener is notified of listings that just became scrap
type FlagListener interface {
	ListingsFlagged(ctx context.Context, ids []string) error
}

// ClassifierConfig holds configuration for classification runs
type ClassifierConfig struct {
	AgeThreshold time.Duration // listings older than this become scrap (default: 30 days)
}

// DefaultClassifierConfig returns default configuration
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		AgeThreshold: 30 * 24 * time.Hour,
	}
}

// ClassifyResult holds the result of a classification run
type ClassifyResult struct {
	Cutoff       time.Time     `json:"cutoff"`
	FlaggedIDs   []string      `json:"flaggedIds"`
	FlaggedCount int64         `json:"flaggedCount"`
	Duration     time.Duration `json:"duration"`
	ExecutedAt   time.Time     `json:"executedAt"`
}

// Classifier promotes aging listings to scrap. The predicate excludes
// listings that are already flagged, so runs are idempotent and the flag
// never goes back to false.
type Classifier struct {
	store     FlagStore
	listeners []FlagListener
	config    ClassifierConfig
	log       *zap.Logger
	now       func() time.Time
}

// NewClassifier creates a new classifier
func NewClassifier(store FlagStore, cfg ClassifierConfig, log *zap.Logger, listeners ...FlagListener) *Classifier {
	if cfg.AgeThreshold <= 0 {
		cfg.AgeThreshold = DefaultClassifierConfig().AgeThreshold
	}
	return &Classifier{
		store:     store,
		listeners: listeners,
		config:    cfg,
		log:       log.Named("scrap-classifier"),
		now:       time.Now,
	}
}

// Run flags every listing older than the age threshold. trigger is recorded
// with the run (models.ScrapTriggerSchedule or models.ScrapTriggerManual).
func (c *Classifier) Run(ctx context.Context, trigger string) (*ClassifyResult, error) {
	start := c.now()
	result := &ClassifyResult{
		Cutoff:     start.Add(-c.config.AgeThreshold),
		ExecutedAt: start,
	}

	ids, affected, err := c.store.FlagAgingListingsAsScrap(ctx, result.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("classify listings: %w", err)
	}
	result.FlaggedIDs = ids
	result.FlaggedCount = affected
	result.Duration = c.now().Sub(start)

	if affected == 0 {
		c.log.Debug("no listings to flag", zap.Time("cutoff", result.Cutoff))
		return result, nil
	}

	c.log.Info("flagged listings as scrap",
		zap.Int64("count", affected),
		zap.Time("cutoff", result.Cutoff),
		zap.String("trigger", trigger),
	)

	run := &models.ScrapRun{
		Trigger:      trigger,
		Cutoff:       result.Cutoff,
		FlaggedCount: affected,
		DurationMs:   result.Duration.Milliseconds(),
	}
	if err := c.store.RecordScrapRun(ctx, run); err != nil {
		c.log.Warn("failed to record scrap run", zap.Error(err))
	}

	for _, l := range c.listeners {
		if err := l.ListingsFlagged(ctx, ids); err != nil {
			c.log.Warn("flag listener failed", zap.Error(err))
		}
	}

	return result, nil
}
