package heatmap

import (
	"errors"

	"ewaste-exchange/internal/geo"
	"ewaste-exchange/internal/scrap"
)

var (
	ErrTerminalLevel  = errors.New("user level has no further groups")
	ErrAtTopLevel     = errors.New("already at city level")
	ErrRegionNotFound = errors.New("region not found")
)

// Region is one circle on the heatmap
type Region struct {
	Key                string    `json:"key"`
	Name               string    `json:"name"`
	Type               Level     `json:"type"`
	Center             geo.Point `json:"center"`
	Radius             float64   `json:"radius"`
	Approximate        bool      `json:"approximate"`
	TotalRequests      int       `json:"totalRequests"`
	TotalWeight        string    `json:"totalWeight"`
	TotalWeightKg      float64   `json:"-"`
	HasScheduledPickup bool      `json:"hasScheduledPickup"`
	Density            float64   `json:"density"`
	Color              string    `json:"color"`
}

// Reducer groups seller views into regions for one level
type Reducer struct {
	distance geo.DistanceFunc
}

// NewReducer returns a reducer measuring radii with distance. A nil distance
// falls back to the latitude-spread approximation and marks regions as
// approximate.
func NewReducer(distance geo.DistanceFunc) *Reducer {
	return &Reducer{distance: distance}
}

type group struct {
	region *Region
	points []geo.Point
}

// Group buckets sellers by the address field for level and returns one region
// per distinct case-insensitive name, in order of first appearance. Sellers
// with an empty field at that level are left out.
func (r *Reducer) Group(sellers []scrap.SellerView, level Level) ([]Region, error) {
	if level == LevelUser {
		return nil, ErrTerminalLevel
	}

	var order []string
	groups := make(map[string]*group)
	for i := range sellers {
		s := &sellers[i]
		key := normalizeKey(level.field(s.Address))
		if key == "" {
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = &group{region: &Region{Key: key, Name: displayName(key), Type: level}}
			groups[key] = g
			order = append(order, key)
		}

		g.points = append(g.points, geo.Point{Lat: s.Address.Coordinates.Lat, Lng: s.Address.Coordinates.Lng})
		if len(s.Listings) > 0 {
			g.region.TotalRequests++
		}
		g.region.TotalWeightKg += s.TotalWeightKg
		if s.HasScheduledPickup() {
			g.region.HasScheduledPickup = true
		}
	}

	regions := make([]Region, 0, len(order))
	maxRequests := 1
	for _, key := range order {
		g := groups[key]
		region := g.region
		region.Center, _ = geo.Centroid(g.points)
		region.Radius, region.Approximate = r.radius(region.Center, g.points, level)
		region.TotalWeight = scrap.FormatWeight(region.TotalWeightKg)
		if n := atLeastOne(region.TotalRequests); n > maxRequests {
			maxRequests = n
		}
		regions = append(regions, *region)
	}

	for i := range regions {
		regions[i].Density = float64(atLeastOne(regions[i].TotalRequests)) / float64(maxRequests)
		regions[i].Color = ColorFor(regions[i].Density)
	}
	return regions, nil
}

func (r *Reducer) radius(center geo.Point, points []geo.Point, level Level) (float64, bool) {
	var computed float64
	approximate := r.distance == nil
	if approximate {
		computed = geo.LatitudeSpread(center, points)
	} else {
		computed = geo.MaxDistance(center, points, r.distance)
	}
	if floor := level.MinRadius(); computed < floor {
		computed = floor
	}
	return computed, approximate
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
