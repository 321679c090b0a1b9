package scrap

import (
	"context"
	"sync"
	"time"

	"ewaste-exchange/internal/models"
)

// memStore is an in-memory stand-in for the gorm store
type memStore struct {
	mu       sync.Mutex
	listings []models.Listing
	users    []models.User
	pickups  []models.Pickup
	runs     []models.ScrapRun

	listErr   error
	usersErr  error
	pickupErr error
}

func (s *memStore) FlagAgingListingsAsScrap(_ context.Context, cutoff time.Time) ([]string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for i := range s.listings {
		l := &s.listings[i]
		if !l.IsScrapItem && l.CreatedAt.Before(cutoff) {
			l.IsScrapItem = true
			ids = append(ids, l.ID)
		}
	}
	return ids, int64(len(ids)), nil
}

func (s *memStore) RecordScrapRun(_ context.Context, run *models.ScrapRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

func (s *memStore) ListScrapListings(context.Context) ([]models.Listing, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Listing
	for _, l := range s.listings {
		if l.IsScrapItem {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memStore) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	want := toSet(ids)
	var out []models.User
	for _, u := range s.users {
		if want[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memStore) GetPickupsByListingIDs(_ context.Context, ids []string) ([]models.Pickup, error) {
	if s.pickupErr != nil {
		return nil, s.pickupErr
	}
	want := toSet(ids)
	var out []models.Pickup
	for _, p := range s.pickups {
		if want[p.ListingID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) isScrap(id string) bool {
	for _, l := range s.listings {
		if l.ID == id {
			return l.IsScrapItem
		}
	}
	return false
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
