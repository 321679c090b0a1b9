package pickup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ewaste-exchange/internal/database"
	"ewaste-exchange/internal/events"
	"ewaste-exchange/internal/lock"
	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/scrap"

	"go.uber.org/zap"
)

// Aggregator supplies the current seller views
type Aggregator interface {
	SellerViews(ctx context.Context) ([]scrap.SellerView, error)
}

// Store persists pickups
type Store interface {
	CreatePickups(ctx context.Context, pickups []*models.Pickup) error
	CompletePickup(ctx context.Context, id string, at time.Time) (p *models.Pickup, changed bool, err error)
}

// Recorder counts pickup activity
type Recorder interface {
	PickupsCreated(n int)
	PickupCompleted()
}

// Config holds scheduling defaults
type Config struct {
	DefaultFacilityName    string
	DefaultFacilityAddress string
	RejectPastDates        bool
	Location               *time.Location // calendar used for "today"
	LockTTL                time.Duration
}

// ScheduleRequest is the body of a scheduling call
type ScheduleRequest struct {
	Area            string `json:"area"`
	Colony          string `json:"colony"`
	FacilityName    string `json:"facilityName"`
	FacilityAddress string `json:"facilityAddress"`
	PickupDate      string `json:"pickupDate"`
}

// Outcome of one listing in a scheduling call
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
)

// ItemResult reports what happened to one matched listing
type ItemResult struct {
	ListingID string  `json:"listingId"`
	Outcome   Outcome `json:"outcome"`
	PickupID  string  `json:"pickupId,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// ScheduleResult is the outcome of a scheduling call
type ScheduleResult struct {
	Pickups []models.Pickup `json:"pickups"`
	Results []ItemResult    `json:"results"`
}

// Service schedules and completes pickups
type Service struct {
	aggregator Aggregator
	store      Store
	locker     lock.Locker
	publisher  events.Publisher
	recorder   Recorder
	config     Config
	log        *zap.Logger
	now        func() time.Time
}

// NewService creates a pickup service. locker, publisher and recorder may be nil.
func NewService(aggregator Aggregator, store Store, locker lock.Locker, publisher events.Publisher, recorder Recorder, cfg Config, log *zap.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Service{
		aggregator: aggregator,
		store:      store,
		locker:     locker,
		publisher:  publisher,
		recorder:   recorder,
		config:     cfg,
		log:        log.Named("pickup"),
		now:        time.Now,
	}
}

// Schedule creates one pickup per scrap listing of every seller whose area or
// colony matches the request. The batch is written atomically. Listings that
// already have a scheduled pickup are skipped.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	area := normalize(req.Area)
	colony := normalize(req.Colony)
	if area == "" && colony == "" {
		return nil, fmt.Errorf("%w: area or colony is required", ErrInvalidRequest)
	}

	pickupDate, err := s.parsePickupDate(req.PickupDate)
	if err != nil {
		return nil, err
	}

	facilityName := strings.TrimSpace(req.FacilityName)
	if facilityName == "" {
		facilityName = s.config.DefaultFacilityName
	}
	facilityAddress := strings.TrimSpace(req.FacilityAddress)
	if facilityAddress == "" {
		facilityAddress = s.config.DefaultFacilityAddress
	}

	release, ok, err := s.locker.TryLock(ctx, "pickup-schedule:"+area+"|"+colony, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire scheduling lock: %w", err)
	}
	if !ok {
		return nil, ErrScheduleInProgress
	}
	defer release()

	views, err := s.aggregator.SellerViews(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScheduleResult{Pickups: []models.Pickup{}, Results: []ItemResult{}}
	var batch []*models.Pickup
	for i := range views {
		seller := &views[i]
		if !matches(seller.Address, area, colony) {
			continue
		}
		for _, l := range seller.Listings {
			if l.PickupDetails != nil && l.PickupDetails.Status == models.PickupStatusScheduled {
				result.Results = append(result.Results, ItemResult{
					ListingID: l.ID,
					Outcome:   OutcomeSkipped,
					PickupID:  l.PickupDetails.PickupID,
					Error:     "pickup already scheduled",
				})
				continue
			}
			batch = append(batch, &models.Pickup{
				ListingID:       l.ID,
				SellerID:        seller.SellerID,
				Area:            seller.Address.Area,
				Colony:          seller.Address.Colony,
				FacilityName:    facilityName,
				FacilityAddress: facilityAddress,
				PickupDate:      pickupDate,
				Status:          models.PickupStatusScheduled,
			})
		}
	}

	if len(batch) == 0 && len(result.Results) == 0 {
		return nil, ErrNoScrapListings
	}
	if len(batch) == 0 {
		return nil, ErrAlreadyScheduled
	}

	if err := s.store.CreatePickups(ctx, batch); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %v", ErrAlreadyScheduled, err)
		}
		return nil, fmt.Errorf("create pickups: %w", err)
	}

	for _, p := range batch {
		result.Pickups = append(result.Pickups, *p)
		result.Results = append(result.Results, ItemResult{
			ListingID: p.ListingID,
			Outcome:   OutcomeCreated,
			PickupID:  p.ID,
		})
	}

	s.log.Info("pickups scheduled",
		zap.String("area", area),
		zap.String("colony", colony),
		zap.Int("created", len(batch)),
		zap.Int("skipped", len(result.Results)-len(batch)),
	)
	if s.recorder != nil {
		s.recorder.PickupsCreated(len(batch))
	}
	now := s.now()
	for _, p := range batch {
		s.publish(ctx, events.SubjectPickupScheduled, p, now)
	}

	return result, nil
}

// Complete marks a pickup completed. Completing twice is not an error, but
// only the call that changed the status counts and publishes.
func (s *Service) Complete(ctx context.Context, pickupID string) (*models.Pickup, error) {
	if strings.TrimSpace(pickupID) == "" {
		return nil, fmt.Errorf("%w: pickup id is required", ErrInvalidRequest)
	}

	now := s.now()
	p, changed, err := s.store.CompletePickup(ctx, pickupID, now.UTC())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrPickupNotFound
		}
		return nil, fmt.Errorf("complete pickup: %w", err)
	}
	if !changed {
		s.log.Debug("pickup already completed", zap.String("pickup_id", p.ID))
		return p, nil
	}

	s.log.Info("pickup completed", zap.String("pickup_id", p.ID), zap.String("listing_id", p.ListingID))
	if s.recorder != nil {
		s.recorder.PickupCompleted()
	}
	s.publish(ctx, events.SubjectPickupCompleted, p, now)
	return p, nil
}

// parsePickupDate accepts YYYY-MM-DD or RFC 3339 and returns midnight UTC of
// that calendar date. Today is allowed; earlier dates are rejected when
// RejectPastDates is set.
func (s *Service) parsePickupDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: pickupDate is required", ErrInvalidRequest)
	}

	loc := s.config.Location
	var parsed time.Time
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		parsed = t
	} else if t, err := time.Parse(time.RFC3339, raw); err == nil {
		parsed = t.In(loc)
	} else {
		return time.Time{}, fmt.Errorf("%w: pickupDate must be YYYY-MM-DD or RFC 3339", ErrInvalidRequest)
	}

	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if s.config.RejectPastDates {
		now := s.now().In(loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if date.Before(today) {
			return time.Time{}, fmt.Errorf("%w: pickupDate must not be in the past", ErrInvalidRequest)
		}
	}
	return date, nil
}

func (s *Service) publish(ctx context.Context, subject string, p *models.Pickup, at time.Time) {
	if err := s.publisher.Publish(ctx, subject, events.NewPickupEvent(p, at)); err != nil {
		s.log.Warn("failed to publish pickup event",
			zap.String("subject", subject),
			zap.String("pickup_id", p.ID),
			zap.Error(err),
		)
	}
}

// matches applies OR semantics: either field matching is enough
func matches(addr models.Address, area, colony string) bool {
	return (area != "" && normalize(addr.Area) == area) ||
		(colony != "" && normalize(addr.Colony) == colony)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
