package models

import (
	"time"
)

// TripStatus tracks a trip through its lifecycle.
type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripDispatched TripStatus = "dispatched"
	TripAtPickup   TripStatus = "at_pickup"
	TripInTransit  TripStatus = "in_transit"
	TripAtDelivery TripStatus = "at_delivery"
	TripDelivered  TripStatus = "delivered"
	TripCancelled  TripStatus = "cancelled"
)

// IsValidTripStatus reports whether s names a known lifecycle state.
func IsValidTripStatus(s TripStatus) bool {
	switch s {
	case TripScheduled, TripDispatched, TripAtPickup, TripInTransit,
		TripAtDelivery, TripDelivered, TripCancelled:
		return true
	}
	return false
}

// Trip represents a dispatched load from pickup to delivery.
type Trip struct {
	PK           string     `dynamodbav:"PK" json:"-"`
	SK           string     `dynamodbav:"SK" json:"-"`
	ID           string     `dynamodbav:"trip_id" json:"id"`
	CarrierID    string     `dynamodbav:"carrier_id" json:"carrier_id"`
	DispatcherID string     `dynamodbav:"dispatcher_id" json:"dispatcher_id"`
	DriverID     string     `dynamodbav:"driver_id" json:"driver_id"`
	TruckOwnerID string     `dynamodbav:"truck_owner_id" json:"truck_owner_id"`
	TruckID      string     `dynamodbav:"truck_id" json:"truck_id"`
	TrailerID    string     `dynamodbav:"trailer_id" json:"trailer_id"`
	BrokerID     string     `dynamodbav:"broker_id" json:"broker_id"`
	Status       TripStatus `dynamodbav:"status" json:"status"`
	ScheduledAt  time.Time  `dynamodbav:"scheduled_at" json:"scheduled_at"`
	PickupAt     *time.Time `dynamodbav:"pickup_at,omitempty" json:"pickup_at,omitempty"`
	DeliveryAt   *time.Time `dynamodbav:"delivery_at,omitempty" json:"delivery_at,omitempty"`

	// Financial fields
	Payment  float64 `dynamodbav:"payment" json:"payment"`   // in USD
	Expenses float64 `dynamodbav:"expenses" json:"expenses"` // in USD
	Mileage  float64 `dynamodbav:"mileage" json:"mileage"`   // in miles

	Notes     string    `dynamodbav:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// TripKey returns the composite key identifying a trip record.
func TripKey(tripID string) (pk, sk string) {
	return "TRIP#" + tripID, "META"
}
