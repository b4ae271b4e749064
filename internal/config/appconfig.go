package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// AppConfig holds the homeflix-specific settings layered on top of the
// platform config (addr, log level).
type AppConfig struct {
	JWTSecret         []byte
	SessionTTL        time.Duration
	BootstrapPassword string
	StoreBackend      string // "memory" or "postgres"
	BlobDir           string
	PublicBaseURL     string
}

func Load() (AppConfig, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return AppConfig{}, errors.New("JWT_SECRET is required")
	}

	backend := strings.TrimSpace(os.Getenv("STORE_BACKEND"))
	if backend == "" {
		backend = "memory"
	}
	if backend != "memory" && backend != "postgres" {
		return AppConfig{}, errors.New("STORE_BACKEND must be memory or postgres")
	}

	bootstrap := strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"))
	if bootstrap == "" {
		bootstrap = "admin"
	}

	blobDir := strings.TrimSpace(os.Getenv("BLOB_DIR"))
	if blobDir == "" {
		blobDir = "./blobs"
	}

	baseURL := strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return AppConfig{
		JWTSecret:         []byte(secret),
		SessionTTL:        parseDurationWithDefault(os.Getenv("SESSION_TTL"), 24*time.Hour),
		BootstrapPassword: bootstrap,
		StoreBackend:      backend,
		BlobDir:           blobDir,
		PublicBaseURL:     strings.TrimRight(baseURL, "/"),
	}, nil
}

func parseDurationWithDefault(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
