package trips

import (
	"time"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/models"
)

// allowTransition is the directed graph of permitted status changes.
// Delivered and cancelled are terminal.
var allowTransition = map[models.TripStatus][]models.TripStatus{
	models.TripScheduled:  {models.TripDispatched, models.TripCancelled},
	models.TripDispatched: {models.TripAtPickup, models.TripCancelled},
	models.TripAtPickup:   {models.TripInTransit, models.TripCancelled},
	models.TripInTransit:  {models.TripAtDelivery, models.TripCancelled},
	models.TripAtDelivery: {models.TripDelivered, models.TripCancelled},
	models.TripDelivered:  {},
	models.TripCancelled:  {},
}

// CanTransition reports whether from -> to is a permitted status change.
func CanTransition(from, to models.TripStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition changes a trip's status and maintains the timestamp
// fields the new status implies.
func ApplyTransition(trip *models.Trip, to models.TripStatus, now time.Time) error {
	if !CanTransition(trip.Status, to) {
		return apperr.BadRequest("invalid trip status transition: %s -> %s", trip.Status, to)
	}
	trip.Status = to
	switch to {
	case models.TripAtPickup:
		if trip.PickupAt == nil {
			t := now
			trip.PickupAt = &t
		}
	case models.TripDelivered:
		if trip.DeliveryAt == nil {
			t := now
			trip.DeliveryAt = &t
		}
	}
	trip.UpdatedAt = now
	return nil
}
