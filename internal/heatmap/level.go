package heatmap

import (
	"strings"

	"ewaste-exchange/internal/geo"
	"ewaste-exchange/internal/models"
)

// Level is one step of the drill-down: city > area > colony > user
type Level string

const (
	LevelCity   Level = "city"
	LevelArea   Level = "area"
	LevelColony Level = "colony"
	LevelUser   Level = "user"
)

// DefaultCenter is where the map opens before any region is selected (Pune)
var DefaultCenter = geo.Point{Lat: 18.5204, Lng: 73.8567}

// Next returns the level below l. ok is false at the user level.
func (l Level) Next() (next Level, ok bool) {
	switch l {
	case LevelCity:
		return LevelArea, true
	case LevelArea:
		return LevelColony, true
	case LevelColony:
		return LevelUser, true
	}
	return "", false
}

// Zoom is the map zoom used when showing level l
func (l Level) Zoom() int {
	switch l {
	case LevelCity:
		return 10
	case LevelArea:
		return 12
	case LevelColony:
		return 14
	default:
		return 16
	}
}

// MinRadius is the smallest circle drawn for a group at level l, in metres
func (l Level) MinRadius() float64 {
	switch l {
	case LevelCity:
		return 20000
	case LevelArea:
		return 5000
	default:
		return 1000
	}
}

// field returns the address component that groups sellers at level l
func (l Level) field(addr models.Address) string {
	switch l {
	case LevelCity:
		return addr.City
	case LevelArea:
		return addr.Area
	case LevelColony:
		return addr.Colony
	}
	return ""
}

// Colour tokens from darkest to lightest
const (
	ColorHighest = "#8B0000"
	ColorHigh    = "#FF4040"
	ColorMedium  = "#FF6666"
	ColorLow     = "#FF9999"
)

// ColorFor maps a request density in [0,1] to a fill colour
func ColorFor(density float64) string {
	switch {
	case density > 0.75:
		return ColorHighest
	case density > 0.5:
		return ColorHigh
	case density > 0.25:
		return ColorMedium
	default:
		return ColorLow
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// displayName upper-cases the first letter of a normalized key
func displayName(key string) string {
	if key == "" {
		return key
	}
	r := []rune(key)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
