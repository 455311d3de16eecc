// Package subscriptions maintains per-user watch-lists and resolves opaque
// entity ids to display data.
package subscriptions

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/identity"
	"github.com/haulbase/haulbase/internal/models"
)

// Subscriptions is a user's watch-list state. Slices are never nil.
type Subscriptions struct {
	SubscribedAdminIDs   []string `json:"subscribed_admin_ids"`
	SubscribedCarrierIDs []string `json:"subscribed_carrier_ids"`
}

// Changes describes additions and removals to apply to the watch-lists.
type Changes struct {
	AddAdminIDs      []string `json:"add_admin_ids,omitempty"`
	AddCarrierIDs    []string `json:"add_carrier_ids,omitempty"`
	RemoveAdminIDs   []string `json:"remove_admin_ids,omitempty"`
	RemoveCarrierIDs []string `json:"remove_carrier_ids,omitempty"`
}

// IsEmpty reports whether no change is requested at all.
func (c Changes) IsEmpty() bool {
	return len(c.AddAdminIDs) == 0 && len(c.AddCarrierIDs) == 0 &&
		len(c.RemoveAdminIDs) == 0 && len(c.RemoveCarrierIDs) == 0
}

// Service owns the watch-list and resolution operations.
type Service struct {
	users    db.UserStore
	assets   db.AssetStore
	identity identity.Provider
	log      *log.Entry
}

// NewService creates a subscription service.
func NewService(users db.UserStore, assets db.AssetStore, provider identity.Provider, logger *log.Entry) *Service {
	return &Service{users: users, assets: assets, identity: provider, log: logger}
}

// GetSubscriptions reads a user's watch-lists. Absent set attributes come
// back as empty lists, never nil.
func (s *Service) GetSubscriptions(ctx context.Context, userID string) (*Subscriptions, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Subscriptions{
		SubscribedAdminIDs:   orEmpty(user.SubscribedAdminIDs),
		SubscribedCarrierIDs: orEmpty(user.SubscribedCarrierIDs),
	}, nil
}

// UpdateSubscriptions applies additions and removals as atomic set
// operations against the store, so concurrent subscribers never lose each
// other's updates. An empty change set returns the current state unchanged.
func (s *Service) UpdateSubscriptions(ctx context.Context, userID string, changes Changes) (*Subscriptions, error) {
	if changes.IsEmpty() {
		return s.GetSubscriptions(ctx, userID)
	}
	if len(changes.AddAdminIDs) > 0 || len(changes.AddCarrierIDs) > 0 {
		if err := s.users.AddSubscriptions(ctx, userID, changes.AddAdminIDs, changes.AddCarrierIDs); err != nil {
			return nil, err
		}
	}
	if len(changes.RemoveAdminIDs) > 0 || len(changes.RemoveCarrierIDs) > 0 {
		if err := s.users.RemoveSubscriptions(ctx, userID, changes.RemoveAdminIDs, changes.RemoveCarrierIDs); err != nil {
			return nil, err
		}
	}
	return s.GetSubscriptions(ctx, userID)
}

// CreatePlaceholderUser delegates identity creation to the provider, writes
// the directory record, then auto-subscribes the creator to the new entity.
// The auto-subscribe is part of the operation, not an optional side effect.
func (s *Service) CreatePlaceholderUser(ctx context.Context, creatorID, email, name string, role models.Role) (string, error) {
	userID, err := s.identity.CreateUser(ctx, email, name, role)
	if err != nil {
		return "", err
	}

	carrierID := ""
	if role == models.RoleCarrier {
		// Carriers are their own tenant.
		carrierID = userID
	}
	if err := s.users.PutUser(ctx, models.User{
		ID:        userID,
		Role:      role,
		CarrierID: carrierID,
		Email:     email,
		Name:      name,
		IsActive:  true,
	}); err != nil {
		return "", err
	}

	changes := Changes{}
	switch role {
	case models.RoleCarrier:
		changes.AddCarrierIDs = []string{userID}
	case models.RoleAdmin:
		changes.AddAdminIDs = []string{userID}
	}
	if !changes.IsEmpty() {
		if _, err := s.UpdateSubscriptions(ctx, creatorID, changes); err != nil {
			return "", err
		}
	}

	s.log.WithFields(log.Fields{"user": userID, "role": role, "creator": creatorID}).Info("placeholder user created")
	return userID, nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
