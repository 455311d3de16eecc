package trips

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.TripStatus
		to   models.TripStatus
		want bool
	}{
		{"scheduled to dispatched", models.TripScheduled, models.TripDispatched, true},
		{"dispatched to at_pickup", models.TripDispatched, models.TripAtPickup, true},
		{"at_pickup to in_transit", models.TripAtPickup, models.TripInTransit, true},
		{"in_transit to at_delivery", models.TripInTransit, models.TripAtDelivery, true},
		{"at_delivery to delivered", models.TripAtDelivery, models.TripDelivered, true},
		{"cancel from scheduled", models.TripScheduled, models.TripCancelled, true},
		{"cancel from in_transit", models.TripInTransit, models.TripCancelled, true},
		{"same status is a no-op", models.TripInTransit, models.TripInTransit, true},
		{"skipping a stage", models.TripScheduled, models.TripInTransit, false},
		{"moving backwards", models.TripInTransit, models.TripAtPickup, false},
		{"delivered is terminal", models.TripDelivered, models.TripCancelled, false},
		{"cancelled is terminal", models.TripCancelled, models.TripScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanTransition(tt.from, tt.to)
			if got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestApplyTransition(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("at_pickup stamps pickup time once", func(t *testing.T) {
		trip := &models.Trip{Status: models.TripDispatched}
		assert.NoError(t, ApplyTransition(trip, models.TripAtPickup, now))
		assert.Equal(t, now, *trip.PickupAt)

		later := now.Add(time.Hour)
		assert.NoError(t, ApplyTransition(trip, models.TripAtPickup, later))
		assert.Equal(t, now, *trip.PickupAt)
		assert.Equal(t, later, trip.UpdatedAt)
	})

	t.Run("delivered stamps delivery time", func(t *testing.T) {
		trip := &models.Trip{Status: models.TripAtDelivery}
		assert.NoError(t, ApplyTransition(trip, models.TripDelivered, now))
		assert.Equal(t, now, *trip.DeliveryAt)
		assert.Equal(t, models.TripDelivered, trip.Status)
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		trip := &models.Trip{Status: models.TripDelivered}
		err := ApplyTransition(trip, models.TripInTransit, now)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Equal(t, models.TripDelivered, trip.Status)
	})
}
