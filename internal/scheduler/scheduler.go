package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ewaste-exchange/internal/config"
	"ewaste-exchange/internal/logger"
	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/scrap"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	pingTimeout = 5 * time.Second
	runTimeout  = 2 * time.Minute
)

// Run outcomes reported to the observer
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Pinger checks the storage connection before a run
type Pinger interface {
	Ping(ctx context.Context) error
}

// Runner executes one classification pass
type Runner interface {
	Run(ctx context.Context, trigger string) (*scrap.ClassifyResult, error)
}

// RunObserver receives the outcome of each scheduled run
type RunObserver interface {
	ObserveScrapRun(outcome string, flagged int64, duration time.Duration)
}

// Scheduler runs the scrap classification job on a cron schedule
type Scheduler struct {
	cron       *cron.Cron
	db         Pinger
	classifier Runner
	observer   RunObserver
	config     config.ScrapConfig
	log        *zap.Logger

	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler. observer may be nil.
func NewScheduler(db Pinger, classifier Runner, cfg config.ScrapConfig, log *zap.Logger, observer RunObserver) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	log = log.Named("scheduler")
	cronLog := logger.NewCronLogger(log)

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		db:         db,
		classifier: classifier,
		observer:   observer,
		config:     cfg,
		log:        log,
	}, nil
}

// Start registers the classification job and starts the cron loop
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.log.Info("scrap classification is disabled in configuration")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid scrap schedule %q: %w", s.config.Schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.isRunning = true
	s.log.Info("started",
		zap.String("schedule", s.config.Schedule),
		zap.String("timezone", s.config.Timezone),
		zap.Int("age_threshold_days", s.config.AgeThresholdDays),
	)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.log.Info("stopped")
	}
}

// IsRunning reports whether the cron loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow immediately executes the classification job (for manual trigger)
func (s *Scheduler) RunNow(ctx context.Context) (*scrap.ClassifyResult, error) {
	s.log.Info("manual trigger")
	if err := s.ping(ctx); err != nil {
		return nil, fmt.Errorf("database not reachable: %w", err)
	}
	return s.classifier.Run(ctx, models.ScrapTriggerManual)
}

// runScheduled is the cron entry point. Errors are logged and swallowed; the
// next tick is the retry.
func (s *Scheduler) runScheduled() {
	start := time.Now()

	if err := s.ping(context.Background()); err != nil {
		s.log.Warn("database not reachable, skipping run", zap.Error(err))
		s.observe(OutcomeSkipped, 0, time.Since(start))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := s.classifier.Run(ctx, models.ScrapTriggerSchedule)
	if err != nil {
		s.log.Error("scrap classification failed", zap.Error(err))
		s.observe(OutcomeError, 0, time.Since(start))
		return
	}
	s.observe(OutcomeSuccess, result.FlaggedCount, time.Since(start))
}

func (s *Scheduler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.Ping(ctx)
}

func (s *Scheduler) observe(outcome string, flagged int64, d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveScrapRun(outcome, flagged, d)
	}
}
