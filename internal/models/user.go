package models

import (
	"time"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCarrier    Role = "carrier"
	RoleDispatcher Role = "dispatcher"
	RoleTruckOwner Role = "truck_owner"
	RoleDriver     Role = "driver"
)

// User represents a user in the system. Carriers are users whose
// carrier_id points back at their own user_id; every other role belongs
// to exactly one carrier.
type User struct {
	PK        string    `dynamodbav:"PK" json:"-"`
	SK        string    `dynamodbav:"SK" json:"-"`
	ID        string    `dynamodbav:"user_id" json:"id"`
	Role      Role      `dynamodbav:"role" json:"role"`
	CarrierID string    `dynamodbav:"carrier_id" json:"carrier_id"`
	Email     string    `dynamodbav:"email" json:"email"`
	Name      string    `dynamodbav:"name" json:"name"`
	Phone     string    `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	IsActive  bool      `dynamodbav:"is_active" json:"is_active"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`

	// Driver-specific fields
	CDLNumber string     `dynamodbav:"cdl_number,omitempty" json:"cdl_number,omitempty"`
	CDLExpiry *time.Time `dynamodbav:"cdl_expiry,omitempty" json:"cdl_expiry,omitempty"`
	Rate      float64    `dynamodbav:"rate,omitempty" json:"rate,omitempty"`

	// Owner/carrier-specific fields
	TaxID string `dynamodbav:"tax_id,omitempty" json:"tax_id,omitempty"`

	// Watch-lists, stored as native string sets so additions and removals
	// are atomic set operations rather than read-modify-write.
	SubscribedAdminIDs   []string `dynamodbav:"subscribed_admin_ids,stringset,omitempty" json:"subscribed_admin_ids,omitempty"`
	SubscribedCarrierIDs []string `dynamodbav:"subscribed_carrier_ids,stringset,omitempty" json:"subscribed_carrier_ids,omitempty"`
}

// Claims represents the caller identity extracted from a verified token.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CarrierID string `json:"carrier_id"`
	Exp       int64  `json:"exp"`
}

// IsAdmin reports whether the caller holds the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleCarrier, RoleDispatcher, RoleTruckOwner, RoleDriver:
		return true
	default:
		return false
	}
}

// UserKey returns the composite key identifying a user record.
func UserKey(userID string) (pk, sk string) {
	return "USER#" + userID, "PROFILE"
}
