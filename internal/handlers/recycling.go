package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"ewaste-exchange/internal/geo"
	"ewaste-exchange/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultNearbyRadius = 10000.0

// RecyclingStore reads recycling centers
type RecyclingStore interface {
	ListRecyclingCenters(ctx context.Context) ([]models.RecyclingCenter, error)
	GetRecyclingCenter(ctx context.Context, id string) (*models.RecyclingCenter, error)
}

type RecyclingHandler struct {
	store RecyclingStore
}

func NewRecyclingHandler(store RecyclingStore) *RecyclingHandler {
	return &RecyclingHandler{store: store}
}

// NearbyCenter is a recycling center with its distance from the query point
type NearbyCenter struct {
	models.RecyclingCenter
	DistanceMeters float64 `json:"distanceMeters"`
}

// List returns every center, newest first
func (h *RecyclingHandler) List(c *gin.Context) {
	centers, err := h.store.ListRecyclingCenters(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, centers)
}

// Get returns one center
func (h *RecyclingHandler) Get(c *gin.Context) {
	center, err := h.store.GetRecyclingCenter(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, center)
}

// Nearby returns centers within radius metres of lat/lng, nearest first
func (h *RecyclingHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondError(c, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}

	radius := defaultNearbyRadius
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			respondError(c, http.StatusBadRequest, "radius must be a positive number of metres")
			return
		}
		radius = r
	}

	centers, err := h.store.ListRecyclingCenters(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	nearby := []NearbyCenter{}
	for _, center := range centers {
		d := geo.Haversine(origin, geo.Point{Lat: center.Location.Lat, Lng: center.Location.Lng})
		if d <= radius {
			nearby = append(nearby, NearbyCenter{RecyclingCenter: center, DistanceMeters: d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	respondOK(c, http.StatusOK, nearby)
}
