package models

import (
	"fmt"
	"time"
)

// AssetKind distinguishes the two asset record shapes sharing the assets table.
type AssetKind string

const (
	KindTruck   AssetKind = "TRUCK"
	KindTrailer AssetKind = "TRAILER"
)

// Asset represents a truck or trailer owned by a truck owner and operated
// under a carrier. The sort key carries the kind so trucks and trailers can
// be fetched independently from the same table.
type Asset struct {
	PK        string    `dynamodbav:"PK" json:"-"`
	SK        string    `dynamodbav:"SK" json:"-"`
	ID        string    `dynamodbav:"asset_id" json:"id"`
	Kind      AssetKind `dynamodbav:"kind" json:"kind"`
	Plate     string    `dynamodbav:"plate" json:"plate"`
	VIN       string    `dynamodbav:"vin" json:"vin"`
	Brand     string    `dynamodbav:"brand" json:"brand"`
	Year      int       `dynamodbav:"year" json:"year"`
	Color     string    `dynamodbav:"color,omitempty" json:"color,omitempty"`
	CarrierID string    `dynamodbav:"carrier_id" json:"carrier_id"`
	OwnerID   string    `dynamodbav:"owner_id" json:"owner_id"`
	Reefer    *bool     `dynamodbav:"reefer,omitempty" json:"reefer,omitempty"`
	IsActive  bool      `dynamodbav:"is_active" json:"is_active"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// AssetSpec carries the caller-supplied fields for a new asset.
type AssetSpec struct {
	ID      string    `json:"id"`
	Kind    AssetKind `json:"kind"`
	Plate   string    `json:"plate"`
	VIN     string    `json:"vin"`
	Brand   string    `json:"brand"`
	Year    int       `json:"year"`
	Color   string    `json:"color"`
	OwnerID string    `json:"owner_id"`
	Reefer  *bool     `json:"reefer,omitempty"`
}

// AssetUpdate is a partial update; nil fields are left untouched.
type AssetUpdate struct {
	Plate  *string `json:"plate,omitempty"`
	VIN    *string `json:"vin,omitempty"`
	Brand  *string `json:"brand,omitempty"`
	Year   *int    `json:"year,omitempty"`
	Color  *string `json:"color,omitempty"`
	Reefer *bool   `json:"reefer,omitempty"`
}

// IsEmpty reports whether the update carries no changes at all.
func (u AssetUpdate) IsEmpty() bool {
	return u.Plate == nil && u.VIN == nil && u.Brand == nil &&
		u.Year == nil && u.Color == nil && u.Reefer == nil
}

// ValidateYear enforces the acceptable model-year window.
func ValidateYear(year int) error {
	max := time.Now().Year() + 1
	if year < 1900 || year > max {
		return fmt.Errorf("year must be between 1900 and %d", max)
	}
	return nil
}

// AssetKey returns the composite key identifying an asset record.
func AssetKey(assetID string, kind AssetKind) (pk, sk string) {
	return "ASSET#" + assetID, string(kind)
}
