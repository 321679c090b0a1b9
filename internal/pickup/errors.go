package pickup

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid pickup request")
	ErrNoScrapListings    = errors.New("no scrap listings found in the specified area or colony")
	ErrPickupNotFound     = errors.New("pickup not found")
	ErrAlreadyScheduled   = errors.New("all matching listings already have a scheduled pickup")
	ErrScheduleInProgress = errors.New("a pickup for this area or colony is already being scheduled")
)
