// Command backfill projects legacy lorry records into truck and trailer
// records and applies set-if-absent defaults to users and trips. Safe to
// re-run; already migrated records are skipped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/config"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/migrate"
)

func main() {
	userIDs := flag.String("backfill-users", "", "comma-separated user ids to backfill")
	tripIDs := flag.String("backfill-trips", "", "comma-separated trip ids to backfill")
	skipLorries := flag.Bool("skip-lorries", false, "skip the lorry projection pass")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := log.WithField("service", "haulbase-backfill")

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.Region)
	if err != nil {
		log.Fatalf("Failed to connect to DynamoDB: %v", err)
	}

	engine := migrate.NewEngine(
		&db.LorryTable{Client: client, Table: cfg.LorriesTable},
		&db.AssetTable{Client: client, Table: cfg.AssetsTable},
		&db.UserTable{Client: client, Table: cfg.UsersTable},
		&db.TripTable{Client: client, Table: cfg.TripsTable},
		logger,
	)

	if !*skipLorries {
		report, err := engine.Run(ctx)
		if err != nil {
			log.Fatalf("Lorry migration failed: %v", err)
		}
		printReport("lorries", report)
	}
	if ids := splitIDs(*userIDs); len(ids) > 0 {
		printReport("users", engine.BackfillUsers(ctx, ids))
	}
	if ids := splitIDs(*tripIDs); len(ids) > 0 {
		printReport("trips", engine.BackfillTrips(ctx, ids))
	}
}

func splitIDs(csv string) []string {
	var ids []string
	for _, id := range strings.Split(csv, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func printReport(pass string, report *migrate.Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"pass": pass, "report": report})
}
