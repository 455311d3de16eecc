// Package brokers owns broker reference data. Brokers are
// carrier-independent.
package brokers

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Service is the broker reference-data service.
type Service struct {
	brokers db.BrokerStore
	log     *log.Entry
	newID   func() string
	now     func() time.Time
}

// NewService creates a broker service.
func NewService(brokers db.BrokerStore, logger *log.Entry) *Service {
	return &Service{brokers: brokers, log: logger, newID: uuid.NewString, now: time.Now}
}

// CreateSpec carries the caller-supplied fields for a new broker.
type CreateSpec struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	MCNumber string `json:"mc_number"`
}

// Create writes a broker record.
func (s *Service) Create(ctx context.Context, spec CreateSpec) (*models.Broker, error) {
	if spec.Name == "" {
		return nil, apperr.BadRequest("broker name is required")
	}
	now := s.now()
	broker := models.Broker{
		ID:        s.newID(),
		Name:      spec.Name,
		Email:     spec.Email,
		Phone:     spec.Phone,
		MCNumber:  spec.MCNumber,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.brokers.PutBroker(ctx, broker); err != nil {
		return nil, err
	}
	return &broker, nil
}

// Get returns a broker by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Broker, error) {
	return s.brokers.GetBroker(ctx, id)
}

// List returns all brokers.
func (s *Service) List(ctx context.Context) ([]models.Broker, error) {
	return s.brokers.ListBrokers(ctx)
}
