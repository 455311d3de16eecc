// Package migrate projects legacy lorry records into truck and trailer
// records and backfills new fields on users and trips. Every step is
// idempotent so the engine can be re-run safely.
package migrate

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Failure records one record's migration error.
type Failure struct {
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}

// Report summarizes one engine run. One record's failure never aborts the
// batch; it lands here instead.
type Report struct {
	Scanned   int       `json:"scanned"`
	Migrated  int       `json:"migrated"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures"`
	StartedAt time.Time `json:"started_at"`
}

// Engine runs the backfill.
type Engine struct {
	lorries db.LorryStore
	assets  db.AssetStore
	users   db.UserStore
	trips   db.TripStore
	log     *log.Entry
	now     func() time.Time
}

// NewEngine creates a migration engine.
func NewEngine(lorries db.LorryStore, assets db.AssetStore, users db.UserStore, trips db.TripStore, logger *log.Entry) *Engine {
	return &Engine{lorries: lorries, assets: assets, users: users, trips: trips, log: logger, now: time.Now}
}

// Run scans every legacy lorry and projects the unmigrated ones. Already
// migrated records are skipped, which makes re-runs cheap and idempotent.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	report := &Report{Failures: []Failure{}, StartedAt: e.now()}

	lorries, err := e.lorries.ScanLorries(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "scanning legacy records")
	}
	report.Scanned = len(lorries)

	for _, lorry := range lorries {
		if lorry.Migrated {
			report.Skipped++
			continue
		}
		if err := e.migrateLorry(ctx, lorry); err != nil {
			e.log.WithField("lorry", lorry.ID).WithError(err).Warn("lorry migration failed")
			report.Failed++
			report.Failures = append(report.Failures, Failure{RecordID: lorry.ID, Error: err.Error()})
			continue
		}
		report.Migrated++
	}
	return report, nil
}

// migrateLorry projects one legacy record into a truck and a trailer, then
// stamps the source migrated. The legacy record is never deleted.
func (e *Engine) migrateLorry(ctx context.Context, lorry models.Lorry) error {
	truck := e.projectAsset(lorry, models.KindTruck)
	trailer := e.projectAsset(lorry, models.KindTrailer)

	if err := e.assets.PutAsset(ctx, truck); err != nil {
		return fmt.Errorf("writing truck projection: %w", err)
	}
	if err := e.assets.PutAsset(ctx, trailer); err != nil {
		return fmt.Errorf("writing trailer projection: %w", err)
	}
	if err := e.lorries.MarkMigrated(ctx, lorry.ID, e.now()); err != nil {
		return fmt.Errorf("stamping lorry migrated: %w", err)
	}
	return nil
}

// projectAsset derives one asset from a lorry, filling placeholder VIN and
// plate values when the legacy record lacks them.
func (e *Engine) projectAsset(lorry models.Lorry, kind models.AssetKind) models.Asset {
	suffix := "T"
	if kind == models.KindTrailer {
		suffix = "R"
	}
	vin := lorry.VIN
	if vin == "" {
		vin = fmt.Sprintf("MIGRATED-VIN-%s-%s", lorry.ID, suffix)
	}
	plate := lorry.Plate
	if plate == "" {
		plate = fmt.Sprintf("MIGRATED-%s-%s", lorry.ID, suffix)
	}
	year := lorry.Year
	if year == 0 {
		year = 1900
	}
	now := e.now()
	return models.Asset{
		ID:        lorry.ID + "-" + suffix,
		Kind:      kind,
		Plate:     plate,
		VIN:       vin,
		Brand:     lorry.Brand,
		Year:      year,
		Color:     lorry.Color,
		CarrierID: lorry.CarrierID,
		OwnerID:   lorry.OwnerID,
		IsActive:  lorry.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BackfillUsers applies set-if-absent defaults to the given user records.
func (e *Engine) BackfillUsers(ctx context.Context, userIDs []string) *Report {
	report := &Report{Failures: []Failure{}, StartedAt: e.now(), Scanned: len(userIDs)}
	for _, id := range userIDs {
		if err := e.users.BackfillUserDefaults(ctx, id); err != nil {
			e.log.WithField("user", id).WithError(err).Warn("user backfill failed")
			report.Failed++
			report.Failures = append(report.Failures, Failure{RecordID: id, Error: err.Error()})
			continue
		}
		report.Migrated++
	}
	return report
}

// BackfillTrips applies set-if-absent defaults to the given trip records.
func (e *Engine) BackfillTrips(ctx context.Context, tripIDs []string) *Report {
	report := &Report{Failures: []Failure{}, StartedAt: e.now(), Scanned: len(tripIDs)}
	for _, id := range tripIDs {
		if err := e.trips.BackfillTripDefaults(ctx, id); err != nil {
			e.log.WithField("trip", id).WithError(err).Warn("trip backfill failed")
			report.Failed++
			report.Failures = append(report.Failures, Failure{RecordID: id, Error: err.Error()})
			continue
		}
		report.Migrated++
	}
	return report
}
