package scrap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ewaste-exchange/internal/models"
)

// AggregateStore is the storage the aggregator reads from
type AggregateStore interface {
	ListScrapListings(ctx context.Context) ([]models.Listing, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	GetPickupsByListingIDs(ctx context.Context, listingIDs []string) ([]models.Pickup, error)
}

// PickupDetails is the pickup attached to a scrap listing
type PickupDetails struct {
	PickupID        string              `json:"pickupId"`
	FacilityName    string              `json:"facilityName"`
	FacilityAddress string              `json:"facilityAddress"`
	PickupDate      time.Time           `json:"pickupDate"`
	Status          models.PickupStatus `json:"status"`
}

// ListingView is one scrap listing inside a seller view
type ListingView struct {
	ID              string         `json:"_id"`
	Title           string         `json:"title"`
	EstimatedWeight float64        `json:"estimatedWeight"`
	PickupDetails   *PickupDetails `json:"pickupDetails"`
}

// SellerView is the per-seller aggregate of scrap listings
type SellerView struct {
	ListingID       string         `json:"listingId"`
	SellerID        string         `json:"sellerId"`
	Name            string         `json:"name"`
	Address         models.Address `json:"address"`
	Items           []string       `json:"items"`
	EstimatedWeight string         `json:"estimatedWeight"`
	TotalWeightKg   float64        `json:"-"`
	Listings        []ListingView  `json:"listings"`
}

// HasScheduledPickup reports whether any of the seller's listings has a pending pickup
func (v *SellerView) HasScheduledPickup() bool {
	for _, l := range v.Listings {
		if l.PickupDetails != nil && l.PickupDetails.Status == models.PickupStatusScheduled {
			return true
		}
	}
	return false
}

// FormatWeight renders kilograms with the unit suffix used across the API
func FormatWeight(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64) + " kg"
}

// Aggregator joins scrap listings with their sellers and pickups. The join
// runs in memory over three separate reads and is recomputed on every call.
type Aggregator struct {
	store AggregateStore
}

// NewAggregator creates a new aggregator
func NewAggregator(store AggregateStore) *Aggregator {
	return &Aggregator{store: store}
}

// SellerViews returns one view per seller owning at least one scrap listing,
// ordered by each seller's oldest scrap listing. Any read failure fails the
// whole call.
func (a *Aggregator) SellerViews(ctx context.Context) ([]SellerView, error) {
	listings, err := a.store.ListScrapListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list scrap listings: %v", ErrAggregate, err)
	}
	if len(listings) == 0 {
		return []SellerView{}, nil
	}

	var sellerIDs, listingIDs []string
	seen := make(map[string]bool)
	for _, l := range listings {
		listingIDs = append(listingIDs, l.ID)
		if !seen[l.SellerID] {
			seen[l.SellerID] = true
			sellerIDs = append(sellerIDs, l.SellerID)
		}
	}

	users, err := a.store.GetUsersByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load sellers: %v", ErrAggregate, err)
	}
	pickups, err := a.store.GetPickupsByListingIDs(ctx, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load pickups: %v", ErrAggregate, err)
	}

	usersByID := make(map[string]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}
	pickupByListing := indexPickups(pickups)

	listingsBySeller := make(map[string][]models.Listing, len(sellerIDs))
	for _, l := range listings {
		listingsBySeller[l.SellerID] = append(listingsBySeller[l.SellerID], l)
	}

	views := make([]SellerView, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		user, ok := usersByID[sellerID]
		if !ok {
			// orphaned listings are left out of the map
			continue
		}
		views = append(views, buildSellerView(user, listingsBySeller[sellerID], pickupByListing))
	}
	return views, nil
}

func buildSellerView(user *models.User, listings []models.Listing, pickups map[string]*models.Pickup) SellerView {
	view := SellerView{
		ListingID: listings[0].ID,
		SellerID:  user.ID,
		Name:      user.FullName(),
		Address:   user.Address,
		Items:     make([]string, 0, len(listings)),
		Listings:  make([]ListingView, 0, len(listings)),
	}

	for _, l := range listings {
		view.Items = append(view.Items, l.Title)
		view.TotalWeightKg += l.EstimatedWeight

		lv := ListingView{
			ID:              l.ID,
			Title:           l.Title,
			EstimatedWeight: l.EstimatedWeight,
		}
		if p, ok := pickups[l.ID]; ok {
			lv.PickupDetails = &PickupDetails{
				PickupID:        p.ID,
				FacilityName:    p.FacilityName,
				FacilityAddress: p.FacilityAddress,
				PickupDate:      p.PickupDate,
				Status:          p.Status,
			}
		}
		view.Listings = append(view.Listings, lv)
	}

	view.EstimatedWeight = FormatWeight(view.TotalWeightKg)
	return view
}

// indexPickups picks one pickup per listing: the scheduled one if any,
// otherwise the most recently created.
func indexPickups(pickups []models.Pickup) map[string]*models.Pickup {
	byListing := make(map[string]*models.Pickup, len(pickups))
	for i := range pickups {
		p := &pickups[i]
		current, ok := byListing[p.ListingID]
		switch {
		case !ok:
			byListing[p.ListingID] = p
		case current.IsScheduled():
		case p.IsScheduled() || p.CreatedAt.After(current.CreatedAt):
			byListing[p.ListingID] = p
		}
	}
	return byListing
}
