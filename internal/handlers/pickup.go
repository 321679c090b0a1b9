package handlers

import (
	"context"
	"net/http"

	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/pickup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PickupService schedules and completes pickups
type PickupService interface {
	Schedule(ctx context.Context, req pickup.ScheduleRequest) (*pickup.ScheduleResult, error)
	Complete(ctx context.Context, pickupID string) (*models.Pickup, error)
}

type PickupHandler struct {
	service PickupService
	log     *zap.Logger
}

func NewPickupHandler(service PickupService, log *zap.Logger) *PickupHandler {
	return &PickupHandler{service: service, log: log.Named("pickup-handler")}
}

// Schedule creates pickups for every scrap listing in the requested area or colony
func (h *PickupHandler) Schedule(c *gin.Context) {
	var req pickup.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.service.Schedule(c.Request.Context(), req)
	if err != nil {
		h.log.Info("pickup scheduling rejected",
			zap.String("area", req.Area),
			zap.String("colony", req.Colony),
			zap.Error(err),
		)
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": msgPickupScheduled,
		"data":    result.Pickups,
		"results": result.Results,
	})
}

// Complete marks a pickup completed
func (h *PickupHandler) Complete(c *gin.Context) {
	p, err := h.service.Complete(c.Request.Context(), c.Param("pickupId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, msgPickupCompleted, p)
}
