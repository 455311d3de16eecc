package authz

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Router scopes listing queries by the caller's role. Roles without a
// listing rule see an empty list, not an error.
type Router struct {
	assets db.AssetStore
	trips  db.TripStore
	log    *log.Entry
}

// NewRouter creates a query router.
func NewRouter(assets db.AssetStore, trips db.TripStore, logger *log.Entry) *Router {
	return &Router{assets: assets, trips: trips, log: logger}
}

// TripsFor returns the trips the caller may list.
func (r *Router) TripsFor(ctx context.Context, claims models.Claims) ([]models.Trip, error) {
	switch claims.Role {
	case models.RoleTruckOwner:
		return r.trips.ListTripsByOwner(ctx, claims.UserID)
	case models.RoleDriver:
		return r.trips.ListTripsByDriver(ctx, claims.UserID)
	case models.RoleDispatcher, models.RoleCarrier:
		return r.trips.ListTripsByCarrier(ctx, claims.CarrierID)
	case models.RoleAdmin:
		return r.trips.ListAllTrips(ctx)
	default:
		r.log.WithField("role", claims.Role).Warn("trip listing for unhandled role")
		return []models.Trip{}, nil
	}
}

// TripsByStatus returns the caller-visible trips in one lifecycle state.
// The status index spans carriers, so the result is narrowed to the same
// partition TripsFor would return.
func (r *Router) TripsByStatus(ctx context.Context, claims models.Claims, status models.TripStatus) ([]models.Trip, error) {
	var visible func(models.Trip) bool
	switch claims.Role {
	case models.RoleTruckOwner:
		visible = func(t models.Trip) bool { return t.TruckOwnerID == claims.UserID }
	case models.RoleDriver:
		visible = func(t models.Trip) bool { return t.DriverID == claims.UserID }
	case models.RoleDispatcher, models.RoleCarrier:
		visible = func(t models.Trip) bool { return t.CarrierID == claims.CarrierID }
	case models.RoleAdmin:
		visible = func(models.Trip) bool { return true }
	default:
		r.log.WithField("role", claims.Role).Warn("trip listing for unhandled role")
		return []models.Trip{}, nil
	}

	all, err := r.trips.ListTripsByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	trips := []models.Trip{}
	for _, trip := range all {
		if visible(trip) {
			trips = append(trips, trip)
		}
	}
	return trips, nil
}

// AssetsFor returns the assets the caller may list.
func (r *Router) AssetsFor(ctx context.Context, claims models.Claims) ([]models.Asset, error) {
	switch claims.Role {
	case models.RoleTruckOwner:
		return r.assets.ListAssetsByOwner(ctx, claims.UserID)
	case models.RoleDispatcher, models.RoleCarrier:
		return r.assets.ListAssetsByCarrier(ctx, claims.CarrierID)
	case models.RoleAdmin:
		return r.assets.ListAllAssets(ctx)
	default:
		r.log.WithField("role", claims.Role).Warn("asset listing for unhandled role")
		return []models.Asset{}, nil
	}
}

// AssetFor returns a single asset if the caller may see it. Admin lookup
// without an owner hint is a known gap: single-item addressing needs the
// owning carrier, which admin claims do not carry.
// TODO: resolve the owning carrier from the asset record itself once the
// admin console needs single-asset reads.
func (r *Router) AssetFor(ctx context.Context, claims models.Claims, assetID string, kind models.AssetKind) (*models.Asset, error) {
	if claims.IsAdmin() {
		return nil, apperr.Internal("admin single-asset lookup without an owner hint is not implemented")
	}
	asset, err := r.assets.GetAsset(ctx, assetID, kind)
	if err != nil {
		return nil, err
	}
	switch claims.Role {
	case models.RoleTruckOwner:
		if asset.OwnerID != claims.UserID {
			return nil, apperr.Forbidden("asset %s does not belong to caller", assetID)
		}
	default:
		if asset.CarrierID != claims.CarrierID {
			return nil, apperr.Forbidden("asset %s belongs to another carrier", assetID)
		}
	}
	return asset, nil
}

// OwnsAsset reports whether the caller may attach documents to the asset.
// Called before any presigned URL is generated.
func (r *Router) OwnsAsset(ctx context.Context, claims models.Claims, assetID string, kind models.AssetKind) error {
	if claims.IsAdmin() {
		return nil
	}
	asset, err := r.assets.GetAsset(ctx, assetID, kind)
	if err != nil {
		return err
	}
	if asset.OwnerID == claims.UserID || asset.CarrierID == claims.CarrierID {
		return nil
	}
	return apperr.Forbidden("asset %s does not belong to caller", assetID)
}
