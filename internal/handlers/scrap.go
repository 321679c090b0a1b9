package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"ewaste-exchange/internal/heatmap"
	"ewaste-exchange/internal/scrap"
	"ewaste-exchange/internal/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SellerViewSource returns the aggregated scrap listings
type SellerViewSource interface {
	SellerViews(ctx context.Context) ([]scrap.SellerView, error)
}

// Searcher queries the scrap listing index
type Searcher interface {
	FilterSearch(params search.FilterParams) (*search.SearchResult, error)
}

// ScrapHandler serves the aggregated scrap views, the heatmap and search
type ScrapHandler struct {
	aggregator SellerViewSource
	reducer    *heatmap.Reducer
	searcher   Searcher
	log        *zap.Logger
}

// NewScrapHandler creates a scrap handler. searcher may be nil when search
// is not configured.
func NewScrapHandler(aggregator SellerViewSource, reducer *heatmap.Reducer, searcher Searcher, log *zap.Logger) *ScrapHandler {
	return &ScrapHandler{
		aggregator: aggregator,
		reducer:    reducer,
		searcher:   searcher,
		log:        log.Named("scrap-handler"),
	}
}

// ListScrap returns one view per seller with scrap listings
func (h *ScrapHandler) ListScrap(c *gin.Context) {
	views, err := h.aggregator.SellerViews(c.Request.Context())
	if err != nil {
		h.log.Error("failed to aggregate scrap listings", zap.Error(err))
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, views)
}

// Heatmap drills down through the city, area and colony query parameters and
// returns the resulting view
func (h *ScrapHandler) Heatmap(c *gin.Context) {
	city := c.Query("city")
	area := c.Query("area")
	colony := c.Query("colony")
	if (area != "" && city == "") || (colony != "" && area == "") {
		respondError(c, http.StatusBadRequest, "area requires city and colony requires area")
		return
	}

	views, err := h.aggregator.SellerViews(c.Request.Context())
	if err != nil {
		h.log.Error("failed to aggregate scrap listings", zap.Error(err))
		respondErr(c, err)
		return
	}

	nav := heatmap.NewNavigator(h.reducer, views)
	for _, name := range []string{city, area, colony} {
		if name == "" {
			break
		}
		if _, err := nav.Select(name); err != nil {
			if errors.Is(err, heatmap.ErrRegionNotFound) {
				respondError(c, http.StatusNotFound, "Region "+strconv.Quote(name)+" not found.")
				return
			}
			respondErr(c, err)
			return
		}
	}

	view, err := nav.View()
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// Search queries the scrap listing index
func (h *ScrapHandler) Search(c *gin.Context) {
	if h.searcher == nil {
		respondError(c, http.StatusServiceUnavailable, "Search is not configured.")
		return
	}

	params := search.FilterParams{
		Query:    c.Query("q"),
		City:     c.Query("city"),
		Area:     c.Query("area"),
		Colony:   c.Query("colony"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		params.Limit = limit
	}
	if raw := c.Query("min_weight"); raw != "" {
		minWeight, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "min_weight must be a number")
			return
		}
		params.MinWeight = &minWeight
	}

	result, err := h.searcher.FilterSearch(params)
	if err != nil {
		h.log.Error("search failed", zap.String("query", params.Query), zap.Error(err))
		respondError(c, http.StatusBadGateway, "Search request failed.")
		return
	}
	respondOK(c, http.StatusOK, result)
}
