// Package config reads the process configuration from the environment
// once at startup. Values are never mutated after load.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds table names, bucket name and service settings.
type Config struct {
	Env            string
	Port           string
	Region         string
	UsersTable     string
	AssetsTable    string
	TripsTable     string
	BrokersTable   string
	DocumentsTable string
	LorriesTable   string
	DocumentBucket string
	UserPoolID     string
	JWTSecret      string
	AllowedOrigins []string
}

// Load reads configuration from the environment. Table and bucket names
// are required; everything else has a development default.
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getenv("ENV", "development"),
		Port:           getenv("PORT", "8080"),
		Region:         getenv("AWS_REGION", "us-east-1"),
		UsersTable:     os.Getenv("USERS_TABLE"),
		AssetsTable:    os.Getenv("ASSETS_TABLE"),
		TripsTable:     os.Getenv("TRIPS_TABLE"),
		BrokersTable:   os.Getenv("BROKERS_TABLE"),
		DocumentsTable: os.Getenv("DOCUMENTS_TABLE"),
		LorriesTable:   os.Getenv("LORRIES_TABLE"),
		DocumentBucket: os.Getenv("DOCUMENT_BUCKET"),
		UserPoolID:     os.Getenv("COGNITO_USER_POOL_ID"),
		JWTSecret:      getenv("JWT_SECRET", "default-secret-key-change-in-production"),
	}

	for name, v := range map[string]string{
		"USERS_TABLE":     cfg.UsersTable,
		"ASSETS_TABLE":    cfg.AssetsTable,
		"TRIPS_TABLE":     cfg.TripsTable,
		"BROKERS_TABLE":   cfg.BrokersTable,
		"DOCUMENTS_TABLE": cfg.DocumentsTable,
		"LORRIES_TABLE":   cfg.LorriesTable,
		"DOCUMENT_BUCKET": cfg.DocumentBucket,
	} {
		if v == "" {
			return nil, fmt.Errorf("missing required environment variable %s", name)
		}
	}

	origins := getenv("ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
