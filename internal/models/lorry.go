package models

import "time"

// Lorry is the legacy asset shape that predates the truck/trailer split.
// Lorry records are never deleted; the migration engine projects each one
// into a Truck and a Trailer and stamps it migrated.
type Lorry struct {
	PK         string     `dynamodbav:"PK" json:"-"`
	SK         string     `dynamodbav:"SK" json:"-"`
	ID         string     `dynamodbav:"lorry_id" json:"id"`
	Plate      string     `dynamodbav:"plate,omitempty" json:"plate,omitempty"`
	VIN        string     `dynamodbav:"vin,omitempty" json:"vin,omitempty"`
	Brand      string     `dynamodbav:"brand,omitempty" json:"brand,omitempty"`
	Year       int        `dynamodbav:"year,omitempty" json:"year,omitempty"`
	Color      string     `dynamodbav:"color,omitempty" json:"color,omitempty"`
	CarrierID  string     `dynamodbav:"carrier_id" json:"carrier_id"`
	OwnerID    string     `dynamodbav:"owner_id" json:"owner_id"`
	IsActive   bool       `dynamodbav:"is_active" json:"is_active"`
	Migrated   bool       `dynamodbav:"migrated" json:"migrated"`
	MigratedAt *time.Time `dynamodbav:"migrated_at,omitempty" json:"migrated_at,omitempty"`
	CreatedAt  time.Time  `dynamodbav:"created_at" json:"created_at"`
}

// LorryKey returns the composite key identifying a legacy lorry record.
func LorryKey(lorryID string) (pk, sk string) {
	return "LORRY#" + lorryID, "META"
}
