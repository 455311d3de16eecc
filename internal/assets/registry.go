// Package assets owns the truck/trailer lifecycle: registration,
// carrier-scoped creation, partial updates and soft deletion, with the
// uniqueness and carrier-membership checks enforced at write time.
package assets

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Registry is the asset lifecycle service.
type Registry struct {
	assets db.AssetStore
	users  db.UserStore
	log    *log.Entry
	now    func() time.Time
}

// NewRegistry creates an asset registry.
func NewRegistry(assets db.AssetStore, users db.UserStore, logger *log.Entry) *Registry {
	return &Registry{assets: assets, users: users, log: logger, now: time.Now}
}

// Register creates an asset for a truck owner. When carrierID is supplied
// the owner's carrier membership is verified first: a missing owner is
// NotFound, a mismatched carrier is Forbidden.
func (r *Registry) Register(ctx context.Context, ownerID string, spec models.AssetSpec, carrierID string) (*models.Asset, error) {
	if err := models.ValidateYear(spec.Year); err != nil {
		return nil, apperr.BadRequest("%v", err)
	}

	if carrierID != "" {
		if err := r.checkOwnerMembership(ctx, ownerID, carrierID); err != nil {
			return nil, err
		}
	}

	if _, err := r.assets.GetAsset(ctx, spec.ID, spec.Kind); err == nil {
		return nil, apperr.Conflict("asset %s already registered", spec.ID)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	asset := r.fromSpec(spec, ownerID, carrierID)
	if err := r.assets.PutAsset(ctx, asset); err != nil {
		return nil, err
	}
	r.log.WithFields(log.Fields{"asset": asset.ID, "owner": ownerID}).Info("asset registered")
	return &asset, nil
}

// Create creates an asset under a carrier. A supplied owner must belong to
// the same carrier. VIN uniqueness is probed before plate uniqueness so a
// double collision deterministically reports the VIN.
func (r *Registry) Create(ctx context.Context, carrierID string, spec models.AssetSpec) (*models.Asset, error) {
	if err := models.ValidateYear(spec.Year); err != nil {
		return nil, apperr.BadRequest("%v", err)
	}

	if spec.OwnerID != "" {
		if err := r.checkOwnerMembership(ctx, spec.OwnerID, carrierID); err != nil {
			return nil, err
		}
	}

	if err := r.checkVINFree(ctx, carrierID, spec.VIN, spec.Kind); err != nil {
		return nil, err
	}
	if err := r.checkPlateFree(ctx, carrierID, spec.Plate, spec.Kind); err != nil {
		return nil, err
	}

	asset := r.fromSpec(spec, spec.OwnerID, carrierID)
	if err := r.assets.PutAsset(ctx, asset); err != nil {
		return nil, err
	}
	r.log.WithFields(log.Fields{"asset": asset.ID, "carrier": carrierID}).Info("asset created")
	return &asset, nil
}

// Update applies a partial update after re-validating every invariant the
// update touches. An empty partial returns the current record unchanged,
// without a write. Setting VIN or plate to its own current value is not a
// conflict.
func (r *Registry) Update(ctx context.Context, id string, kind models.AssetKind, carrierID string, partial models.AssetUpdate) (*models.Asset, error) {
	asset, err := r.assets.GetAsset(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if asset.CarrierID != carrierID {
		return nil, apperr.Forbidden("asset %s belongs to another carrier", id)
	}
	if partial.IsEmpty() {
		return asset, nil
	}

	if partial.Year != nil {
		if err := models.ValidateYear(*partial.Year); err != nil {
			return nil, apperr.BadRequest("%v", err)
		}
	}
	if partial.VIN != nil && *partial.VIN != asset.VIN {
		if err := r.checkVINFree(ctx, carrierID, *partial.VIN, kind); err != nil {
			return nil, err
		}
	}
	if partial.Plate != nil && *partial.Plate != asset.Plate {
		if err := r.checkPlateFree(ctx, carrierID, *partial.Plate, kind); err != nil {
			return nil, err
		}
	}

	applyUpdate(asset, partial)
	asset.UpdatedAt = r.now()
	if err := r.assets.PutAsset(ctx, *asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Deactivate soft-deletes an asset: the record stays addressable by id but
// drops out of default listings.
func (r *Registry) Deactivate(ctx context.Context, id string, kind models.AssetKind, carrierID string) (*models.Asset, error) {
	return r.setActive(ctx, id, kind, carrierID, false)
}

// Reactivate reverses a soft delete.
func (r *Registry) Reactivate(ctx context.Context, id string, kind models.AssetKind, carrierID string) (*models.Asset, error) {
	return r.setActive(ctx, id, kind, carrierID, true)
}

func (r *Registry) setActive(ctx context.Context, id string, kind models.AssetKind, carrierID string, active bool) (*models.Asset, error) {
	asset, err := r.assets.GetAsset(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if asset.CarrierID != carrierID {
		return nil, apperr.Forbidden("asset %s belongs to another carrier", id)
	}
	asset.IsActive = active
	asset.UpdatedAt = r.now()
	if err := r.assets.PutAsset(ctx, *asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// ListByOwner returns the owner's active assets; no matches is an empty
// list, not an error.
func (r *Registry) ListByOwner(ctx context.Context, ownerID string) ([]models.Asset, error) {
	all, err := r.assets.ListAssetsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return activeOnly(all), nil
}

// ListByCarrier returns the carrier's active assets.
func (r *Registry) ListByCarrier(ctx context.Context, carrierID string) ([]models.Asset, error) {
	all, err := r.assets.ListAssetsByCarrier(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	return activeOnly(all), nil
}

// checkOwnerMembership verifies the owner exists and belongs to the given
// carrier: a missing owner is NotFound, a mismatched carrier is Forbidden.
func (r *Registry) checkOwnerMembership(ctx context.Context, ownerID, carrierID string) error {
	owner, err := r.users.GetUser(ctx, ownerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("owner %s not found", ownerID)
		}
		return err
	}
	if owner.CarrierID != carrierID {
		return apperr.Forbidden("owner %s does not belong to carrier %s", ownerID, carrierID)
	}
	return nil
}

func (r *Registry) checkVINFree(ctx context.Context, carrierID, vin string, kind models.AssetKind) error {
	_, err := r.assets.FindAssetByVIN(ctx, carrierID, vin, kind)
	if err == nil {
		return apperr.Conflict("vin %s is already registered for this carrier", vin)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	return nil
}

func (r *Registry) checkPlateFree(ctx context.Context, carrierID, plate string, kind models.AssetKind) error {
	_, err := r.assets.FindAssetByPlate(ctx, carrierID, plate, kind)
	if err == nil {
		return apperr.Conflict("plate %s is already registered for this carrier", plate)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	return nil
}

func (r *Registry) fromSpec(spec models.AssetSpec, ownerID, carrierID string) models.Asset {
	now := r.now()
	return models.Asset{
		ID:        spec.ID,
		Kind:      spec.Kind,
		Plate:     spec.Plate,
		VIN:       spec.VIN,
		Brand:     spec.Brand,
		Year:      spec.Year,
		Color:     spec.Color,
		CarrierID: carrierID,
		OwnerID:   ownerID,
		Reefer:    spec.Reefer,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func applyUpdate(asset *models.Asset, partial models.AssetUpdate) {
	if partial.Plate != nil {
		asset.Plate = *partial.Plate
	}
	if partial.VIN != nil {
		asset.VIN = *partial.VIN
	}
	if partial.Brand != nil {
		asset.Brand = *partial.Brand
	}
	if partial.Year != nil {
		asset.Year = *partial.Year
	}
	if partial.Color != nil {
		asset.Color = *partial.Color
	}
	if partial.Reefer != nil {
		asset.Reefer = partial.Reefer
	}
}

func activeOnly(assets []models.Asset) []models.Asset {
	out := []models.Asset{}
	for _, a := range assets {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}
