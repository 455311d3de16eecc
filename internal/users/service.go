// Package users owns the user directory: creation with the global email
// uniqueness check, lookups and soft deactivation.
package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Service is the user directory service.
type Service struct {
	users db.UserStore
	log   *log.Entry
	newID func() string
	now   func() time.Time
}

// NewService creates a user service.
func NewService(users db.UserStore, logger *log.Entry) *Service {
	return &Service{users: users, log: logger, newID: uuid.NewString, now: time.Now}
}

// CreateSpec carries the caller-supplied fields for a new user.
type CreateSpec struct {
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Role      models.Role `json:"role"`
	CDLNumber string      `json:"cdl_number,omitempty"`
	Rate      float64     `json:"rate,omitempty"`
	TaxID     string      `json:"tax_id,omitempty"`
}

// Create writes a user under a carrier after the email uniqueness probe.
// Email is unique across all users, not per carrier.
func (s *Service) Create(ctx context.Context, carrierID string, spec CreateSpec) (*models.User, error) {
	if spec.Email == "" || !strings.Contains(spec.Email, "@") {
		return nil, apperr.BadRequest("a valid email is required")
	}
	if spec.Name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if !models.IsValidRole(spec.Role) {
		return nil, apperr.BadRequest("invalid role %q", spec.Role)
	}

	if _, err := s.users.FindUserByEmail(ctx, spec.Email); err == nil {
		return nil, apperr.Conflict("email %s is already in use", spec.Email)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	now := s.now()
	user := models.User{
		ID:        s.newID(),
		Role:      spec.Role,
		CarrierID: carrierID,
		Email:     spec.Email,
		Name:      spec.Name,
		Phone:     spec.Phone,
		CDLNumber: spec.CDLNumber,
		Rate:      spec.Rate,
		TaxID:     spec.TaxID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Role == models.RoleCarrier {
		// Carriers are their own tenant.
		user.CarrierID = user.ID
	}
	if err := s.users.PutUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"user": user.ID, "role": user.Role}).Info("user created")
	return &user, nil
}

// Get returns a user after the carrier ownership check.
func (s *Service) Get(ctx context.Context, id, carrierID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.CarrierID != carrierID {
		return nil, apperr.Forbidden("user %s belongs to another carrier", id)
	}
	return user, nil
}

// ListByCarrier returns the carrier's active users.
func (s *Service) ListByCarrier(ctx context.Context, carrierID string) ([]models.User, error) {
	all, err := s.users.ListUsersByCarrier(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	active := []models.User{}
	for _, u := range all {
		if u.IsActive {
			active = append(active, u)
		}
	}
	return active, nil
}

// Deactivate soft-deletes a user.
func (s *Service) Deactivate(ctx context.Context, id, carrierID string) (*models.User, error) {
	user, err := s.Get(ctx, id, carrierID)
	if err != nil {
		return nil, err
	}
	user.IsActive = false
	user.UpdatedAt = s.now()
	if err := s.users.PutUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}
