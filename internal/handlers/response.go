package handlers

import (
	"errors"
	"net/http"

	"ewaste-exchange/internal/database"
	"ewaste-exchange/internal/pickup"

	"github.com/gin-gonic/gin"
)

// User-facing messages for the pickup flow
const (
	msgNoScrapListings = "No scrap listings found in the specified area or colony."
	msgPickupScheduled = "Pickup scheduled successfully."
	msgPickupNotFound  = "Pickup not found."
	msgPickupCompleted = "Pickup marked as completed."
	msgInternalError   = "Internal server error."
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondErr maps a domain error onto its status code and message
func respondErr(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respondError(c, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, pickup.ErrNoScrapListings):
		return http.StatusNotFound, msgNoScrapListings
	case errors.Is(err, pickup.ErrPickupNotFound):
		return http.StatusNotFound, msgPickupNotFound
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, pickup.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, pickup.ErrAlreadyScheduled),
		errors.Is(err, pickup.ErrScheduleInProgress),
		errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}
