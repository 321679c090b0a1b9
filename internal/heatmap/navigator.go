package heatmap

import (
	"ewaste-exchange/internal/geo"
	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/scrap"
)

// Frame is one selection on the drill-down stack
type Frame struct {
	Level  Level     `json:"level"`
	Key    string    `json:"key"`
	Name   string    `json:"name"`
	Center geo.Point `json:"center"`
}

// UserMarker is a single seller shown at the user level
type UserMarker struct {
	SellerID           string         `json:"sellerId"`
	Name               string         `json:"name"`
	Position           geo.Point      `json:"position"`
	Address            models.Address `json:"address"`
	Items              []string       `json:"items"`
	EstimatedWeight    string         `json:"estimatedWeight"`
	ListingCount       int            `json:"listingCount"`
	HasScheduledPickup bool           `json:"hasScheduledPickup"`
}

// View is what the map renders for the current navigator state
type View struct {
	Level    Level        `json:"level"`
	Selected []Frame      `json:"selected"`
	Center   geo.Point    `json:"center"`
	Zoom     int          `json:"zoom"`
	Regions  []Region     `json:"regions,omitempty"`
	Users    []UserMarker `json:"users,omitempty"`
}

// Navigator is the drill-down state machine over a fixed set of seller views.
// Selections are kept on an explicit stack, so drilling up never depends on
// re-deriving the parent from the data.
type Navigator struct {
	reducer *Reducer
	sellers []scrap.SellerView
	stack   []Frame
}

// NewNavigator starts at the city level
func NewNavigator(reducer *Reducer, sellers []scrap.SellerView) *Navigator {
	return &Navigator{reducer: reducer, sellers: sellers}
}

// Level is the level currently displayed
func (n *Navigator) Level() Level {
	level := LevelCity
	for range n.stack {
		level, _ = level.Next()
	}
	return level
}

// Path returns a copy of the selection stack, outermost first
func (n *Navigator) Path() []Frame {
	return append([]Frame(nil), n.stack...)
}

// Select drills into the region called name at the current level
func (n *Navigator) Select(name string) (Frame, error) {
	level := n.Level()
	regions, err := n.reducer.Group(n.working(), level)
	if err != nil {
		return Frame{}, err
	}

	key := normalizeKey(name)
	for _, r := range regions {
		if r.Key == key {
			frame := Frame{Level: level, Key: r.Key, Name: r.Name, Center: r.Center}
			n.stack = append(n.stack, frame)
			return frame, nil
		}
	}
	return Frame{}, ErrRegionNotFound
}

// Up pops the last selection and returns it
func (n *Navigator) Up() (Frame, error) {
	if len(n.stack) == 0 {
		return Frame{}, ErrAtTopLevel
	}
	top := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	return top, nil
}

// View renders the current level
func (n *Navigator) View() (*View, error) {
	level := n.Level()
	view := &View{
		Level:    level,
		Selected: n.Path(),
		Center:   DefaultCenter,
		Zoom:     level.Zoom(),
	}
	if len(n.stack) > 0 {
		view.Center = n.stack[len(n.stack)-1].Center
	}

	working := n.working()
	if level == LevelUser {
		view.Users = userMarkers(working)
		return view, nil
	}

	regions, err := n.reducer.Group(working, level)
	if err != nil {
		return nil, err
	}
	view.Regions = regions
	return view, nil
}

// working filters the sellers by every selection on the stack
func (n *Navigator) working() []scrap.SellerView {
	if len(n.stack) == 0 {
		return n.sellers
	}
	var out []scrap.SellerView
	for _, s := range n.sellers {
		if n.matches(s.Address) {
			out = append(out, s)
		}
	}
	return out
}

func (n *Navigator) matches(addr models.Address) bool {
	for _, f := range n.stack {
		if normalizeKey(f.Level.field(addr)) != f.Key {
			return false
		}
	}
	return true
}

func userMarkers(sellers []scrap.SellerView) []UserMarker {
	markers := make([]UserMarker, 0, len(sellers))
	for i := range sellers {
		s := &sellers[i]
		if len(s.Listings) == 0 {
			continue
		}
		markers = append(markers, UserMarker{
			SellerID:           s.SellerID,
			Name:               s.Name,
			Position:           geo.Point{Lat: s.Address.Coordinates.Lat, Lng: s.Address.Coordinates.Lng},
			Address:            s.Address,
			Items:              s.Items,
			EstimatedWeight:    s.EstimatedWeight,
			ListingCount:       len(s.Listings),
			HasScheduledPickup: s.HasScheduledPickup(),
		})
	}
	return markers
}
