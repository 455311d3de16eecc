package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/assets"
	"github.com/haulbase/haulbase/internal/auth"
	"github.com/haulbase/haulbase/internal/authz"
	"github.com/haulbase/haulbase/internal/brokers"
	"github.com/haulbase/haulbase/internal/config"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/documents"
	"github.com/haulbase/haulbase/internal/handlers"
	"github.com/haulbase/haulbase/internal/identity"
	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/objectstore"
	"github.com/haulbase/haulbase/internal/subscriptions"
	"github.com/haulbase/haulbase/internal/trips"
	"github.com/haulbase/haulbase/internal/users"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	logger := log.WithField("service", "haulbase")

	ctx := context.Background()

	client, err := db.Connect(ctx, cfg.Region)
	if err != nil {
		log.Fatalf("Failed to connect to DynamoDB: %v", err)
	}
	objects, err := objectstore.Connect(ctx, cfg.Region, cfg.DocumentBucket)
	if err != nil {
		log.Fatalf("Failed to connect to S3: %v", err)
	}
	provider, err := identity.Connect(ctx, cfg.Region, cfg.UserPoolID)
	if err != nil {
		log.Fatalf("Failed to connect to Cognito: %v", err)
	}

	userTable := &db.UserTable{Client: client, Table: cfg.UsersTable}
	assetTable := &db.AssetTable{Client: client, Table: cfg.AssetsTable}
	tripTable := &db.TripTable{Client: client, Table: cfg.TripsTable}
	brokerTable := &db.BrokerTable{Client: client, Table: cfg.BrokersTable}
	documentTable := &db.DocumentTable{Client: client, Table: cfg.DocumentsTable}

	router := authz.NewRouter(assetTable, tripTable, logger)

	h := handlers.Handlers{
		Assets:        handlers.NewAssetHandler(assets.NewRegistry(assetTable, userTable, logger), router),
		Trips:         handlers.NewTripHandler(trips.NewService(tripTable, userTable, assetTable, brokerTable, logger), router),
		Documents:     handlers.NewDocumentHandler(documents.NewService(documentTable, objects, router, logger)),
		Subscriptions: handlers.NewSubscriptionHandler(subscriptions.NewService(userTable, assetTable, provider, logger)),
		Users:         handlers.NewUserHandler(users.NewService(userTable, logger)),
		Brokers:       handlers.NewBrokerHandler(brokers.NewService(brokerTable, logger)),
	}

	authMW := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.JWTSecret))
	mux := handlers.NewMux(h, authMW, cfg.AllowedOrigins)

	logger.WithField("port", cfg.Port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+cfg.Port, mux))
}
