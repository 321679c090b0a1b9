package handlers

import (
	"context"
	"net/http"
	"strconv"

	"ewaste-exchange/internal/database"
	"ewaste-exchange/internal/middleware"
	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/ratelimit"
	"ewaste-exchange/internal/scrap"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsStore provides the counts shown on the admin dashboard
type StatsStore interface {
	GetStats(ctx context.Context) (*database.Stats, error)
	RecentScrapRuns(ctx context.Context, limit int) ([]models.ScrapRun, error)
}

// ScrapRunner runs the classification job on demand
type ScrapRunner interface {
	RunNow(ctx context.Context) (*scrap.ClassifyResult, error)
	IsRunning() bool
}

// Reindexer rebuilds the search index from storage
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// AdminHandler handles admin-related requests
type AdminHandler struct {
	stats     StatsStore
	scheduler ScrapRunner
	limiter   *ratelimit.RateLimiter
	indexer   Reindexer
	log       *zap.Logger
}

// NewAdminHandler creates a new admin handler. indexer may be nil when search
// is not configured.
func NewAdminHandler(stats StatsStore, sched ScrapRunner, limiter *ratelimit.RateLimiter, indexer Reindexer, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		stats:     stats,
		scheduler: sched,
		limiter:   limiter,
		indexer:   indexer,
		log:       log.Named("admin"),
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		h.log.Error("failed to load stats", zap.Error(err))
		respondErr(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"counts":           stats,
		"schedulerRunning": h.scheduler != nil && h.scheduler.IsRunning(),
		"searchEnabled":    h.indexer != nil,
	})
}

// RunScrap runs the classification job synchronously and returns its result
func (h *AdminHandler) RunScrap(c *gin.Context) {
	if h.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "Scheduler not available.")
		return
	}

	h.log.Info("manual scrap classification requested", zap.String("user_id", c.GetString(middleware.ContextUserID)))
	result, err := h.scheduler.RunNow(c.Request.Context())
	if err != nil {
		h.log.Error("manual scrap classification failed", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, "Scrap classification failed: "+err.Error())
		return
	}
	respondOK(c, http.StatusOK, result)
}

// GetScrapRuns returns the most recent classification runs that flagged listings
func (h *AdminHandler) GetScrapRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		respondError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	runs, err := h.stats.RecentScrapRuns(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRateLimit returns the scheduling limiter statistics
func (h *AdminHandler) GetRateLimit(c *gin.Context) {
	if h.limiter == nil {
		respondError(c, http.StatusServiceUnavailable, "Rate limiter not available.")
		return
	}
	respondOK(c, http.StatusOK, h.limiter.GetStats())
}

// ResetRateLimit clears every tracked client
func (h *AdminHandler) ResetRateLimit(c *gin.Context) {
	if h.limiter == nil {
		respondError(c, http.StatusServiceUnavailable, "Rate limiter not available.")
		return
	}
	h.limiter.Reset()
	h.log.Info("rate limiter reset")
	respondOK(c, http.StatusOK, h.limiter.GetStats())
}

// Reindex rebuilds the scrap listing search index
func (h *AdminHandler) Reindex(c *gin.Context) {
	if h.indexer == nil {
		respondError(c, http.StatusServiceUnavailable, "Search is not configured.")
		return
	}

	n, err := h.indexer.Reindex(c.Request.Context())
	if err != nil {
		h.log.Error("reindex failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Reindex failed.")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"indexed": n})
}
