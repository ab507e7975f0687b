package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL      string
	Port       string
	BatchSize  int
	InboxDir   string
	StatusDir  string
	IngestCron string // cron spec for the inbox scanner; empty disables it
	APIToken   string // shared token for the HTTP API; empty disables auth
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	batchSize := 500
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("BATCH_SIZE must be a positive integer, got %q", v)
		}
		batchSize = n
	}

	inboxDir := os.Getenv("INBOX_DIR")
	if inboxDir == "" {
		inboxDir = "./inbox"
	}

	statusDir := os.Getenv("STATUS_DIR")
	if statusDir == "" {
		statusDir = "./status"
	}

	return &Config{
		PGURL:      pgURL,
		Port:       port,
		BatchSize:  batchSize,
		InboxDir:   inboxDir,
		StatusDir:  statusDir,
		IngestCron: os.Getenv("INGEST_CRON"),
		APIToken:   os.Getenv("API_TOKEN"),
	}, nil
}
