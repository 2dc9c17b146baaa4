package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all process configuration, loaded from the environment
// at startup.
type Config struct {
	// TelegramToken authenticates the bot against the chat transport.
	TelegramToken string

	// GCSBucket and GCSObject locate the single ledger workbook.
	GCSBucket string
	GCSObject string

	// AllowedUserIDs is the static operator allow-list.
	AllowedUserIDs []int64

	// BQProjectID and BQDataset locate the analytics mirror. Only the
	// export command needs them.
	BQProjectID string
	BQDataset   string

	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string
}

const defaultObject = "ledger.xlsx"

// Load reads configuration from the environment. The token, bucket, and
// allow-list are required for the bot process.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GCSBucket:     os.Getenv("GCS_BUCKET"),
		GCSObject:     os.Getenv("GCS_OBJECT"),
		BQProjectID:   os.Getenv("BQ_PROJECT_ID"),
		BQDataset:     os.Getenv("BQ_DATASET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
	if cfg.GCSObject == "" {
		cfg.GCSObject = defaultObject
	}

	ids, err := parseUserIDs(os.Getenv("ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("Load: ALLOWED_USER_IDS: %w", err)
	}
	cfg.AllowedUserIDs = ids

	return cfg, nil
}

// ValidateBot checks the settings the bot process cannot run without.
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.GCSBucket == "" {
		return fmt.Errorf("GCS_BUCKET is required")
	}
	if len(c.AllowedUserIDs) == 0 {
		return fmt.Errorf("ALLOWED_USER_IDS is required")
	}
	return nil
}

// ValidateExport checks the settings the BigQuery export needs.
func (c *Config) ValidateExport() error {
	if c.BQProjectID == "" {
		return fmt.Errorf("BQ_PROJECT_ID is required")
	}
	if c.BQDataset == "" {
		return fmt.Errorf("BQ_DATASET is required")
	}
	return nil
}

func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
