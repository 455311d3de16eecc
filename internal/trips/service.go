// Package trips owns the trip lifecycle. A trip references only entities
// that already exist and belong to the same carrier; the references are
// validated at creation and not revalidated if an entity is later
// deactivated.
package trips

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Service is the trip lifecycle service.
type Service struct {
	trips   db.TripStore
	users   db.UserStore
	assets  db.AssetStore
	brokers db.BrokerStore
	log     *log.Entry
	newID   func() string
	now     func() time.Time
}

// NewService creates a trip service.
func NewService(trips db.TripStore, users db.UserStore, assets db.AssetStore, brokers db.BrokerStore, logger *log.Entry) *Service {
	return &Service{
		trips:   trips,
		users:   users,
		assets:  assets,
		brokers: brokers,
		log:     logger,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// CreateSpec carries the caller-supplied fields for a new trip.
type CreateSpec struct {
	DispatcherID string    `json:"dispatcher_id"`
	DriverID     string    `json:"driver_id"`
	TruckID      string    `json:"truck_id"`
	TrailerID    string    `json:"trailer_id"`
	BrokerID     string    `json:"broker_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Payment      float64   `json:"payment"`
	Mileage      float64   `json:"mileage"`
	Notes        string    `json:"notes"`
}

// Create validates every reference against the caller's carrier, then
// writes the trip in the scheduled state.
func (s *Service) Create(ctx context.Context, carrierID string, spec CreateSpec) (*models.Trip, error) {
	dispatcher, err := s.memberUser(ctx, spec.DispatcherID, carrierID, "dispatcher")
	if err != nil {
		return nil, err
	}
	if _, err := s.memberUser(ctx, spec.DriverID, carrierID, "driver"); err != nil {
		return nil, err
	}
	truck, err := s.memberAsset(ctx, spec.TruckID, models.KindTruck, carrierID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberAsset(ctx, spec.TrailerID, models.KindTrailer, carrierID); err != nil {
		return nil, err
	}
	if _, err := s.brokers.GetBroker(ctx, spec.BrokerID); err != nil {
		return nil, err
	}

	now := s.now()
	trip := models.Trip{
		ID:           s.newID(),
		CarrierID:    carrierID,
		DispatcherID: dispatcher.ID,
		DriverID:     spec.DriverID,
		TruckOwnerID: truck.OwnerID,
		TruckID:      spec.TruckID,
		TrailerID:    spec.TrailerID,
		BrokerID:     spec.BrokerID,
		Status:       models.TripScheduled,
		ScheduledAt:  spec.ScheduledAt,
		Payment:      spec.Payment,
		Mileage:      spec.Mileage,
		Notes:        spec.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.trips.PutTrip(ctx, trip); err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"trip": trip.ID, "carrier": carrierID}).Info("trip created")
	return &trip, nil
}

// UpdateStatus moves a trip along its state machine.
func (s *Service) UpdateStatus(ctx context.Context, id, carrierID string, to models.TripStatus) (*models.Trip, error) {
	trip, err := s.ownedTrip(ctx, id, carrierID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(trip, to, s.now()); err != nil {
		return nil, err
	}
	if err := s.trips.PutTrip(ctx, *trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// FinancialUpdate is a partial update of a trip's financial fields.
type FinancialUpdate struct {
	Payment  *float64 `json:"payment,omitempty"`
	Expenses *float64 `json:"expenses,omitempty"`
	Mileage  *float64 `json:"mileage,omitempty"`
}

// UpdateFinancials applies a partial financial update. An empty partial
// returns the current record without a write.
func (s *Service) UpdateFinancials(ctx context.Context, id, carrierID string, partial FinancialUpdate) (*models.Trip, error) {
	trip, err := s.ownedTrip(ctx, id, carrierID)
	if err != nil {
		return nil, err
	}
	if partial.Payment == nil && partial.Expenses == nil && partial.Mileage == nil {
		return trip, nil
	}
	if partial.Payment != nil {
		trip.Payment = *partial.Payment
	}
	if partial.Expenses != nil {
		trip.Expenses = *partial.Expenses
	}
	if partial.Mileage != nil {
		trip.Mileage = *partial.Mileage
	}
	trip.UpdatedAt = s.now()
	if err := s.trips.PutTrip(ctx, *trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// Get returns a trip after the carrier ownership check.
func (s *Service) Get(ctx context.Context, id, carrierID string) (*models.Trip, error) {
	return s.ownedTrip(ctx, id, carrierID)
}

func (s *Service) ownedTrip(ctx context.Context, id, carrierID string) (*models.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.CarrierID != carrierID {
		return nil, apperr.Forbidden("trip %s belongs to another carrier", id)
	}
	return trip, nil
}

func (s *Service) memberUser(ctx context.Context, id, carrierID, field string) (*models.User, error) {
	if id == "" {
		return nil, apperr.BadRequest("%s_id is required", field)
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.CarrierID != carrierID {
		return nil, apperr.Forbidden("%s %s belongs to another carrier", field, id)
	}
	return user, nil
}

func (s *Service) memberAsset(ctx context.Context, id string, kind models.AssetKind, carrierID string) (*models.Asset, error) {
	if id == "" {
		return nil, apperr.BadRequest("%s id is required", kind)
	}
	asset, err := s.assets.GetAsset(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if asset.CarrierID != carrierID {
		return nil, apperr.Forbidden("%s %s belongs to another carrier", kind, id)
	}
	return asset, nil
}
