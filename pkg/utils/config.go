package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BotConfig is everything the bot process reads from the environment.
type BotConfig struct {
	BotToken      string  // DRAMAHUB_BOT_TOKEN, required
	IngestChannel int64   // DRAMAHUB_INGEST_CHANNEL; 0 disables ingestion
	AdminIDs      []int64 // DRAMAHUB_ADMIN_IDS, comma-separated user ids
	AdminPolicy   string  // DRAMAHUB_ADMIN_POLICY: "closed" (default) or "open"

	OpsAddr     string        // DRAMAHUB_OPS_ADDR, default ":8080"
	OpsKey      string        // DRAMAHUB_OPS_KEY; empty disables protected ops routes
	OpsSecret   string        // DRAMAHUB_OPS_SECRET, JWT signing secret
	OpsIssuer   string        // DRAMAHUB_OPS_ISSUER
	OpsTokenTTL time.Duration // DRAMAHUB_OPS_TTL_HOURS, default 24h
}

// LoadBotConfig reads config from the environment. The bot token is
// the only hard requirement; everything else has a workable default.
func LoadBotConfig() (BotConfig, error) {
	cfg := BotConfig{
		BotToken:    os.Getenv("DRAMAHUB_BOT_TOKEN"),
		AdminPolicy: "closed",
		OpsAddr:     ":8080",
		OpsKey:      os.Getenv("DRAMAHUB_OPS_KEY"),
		OpsSecret:   os.Getenv("DRAMAHUB_OPS_SECRET"),
		OpsIssuer:   "dramahub",
		OpsTokenTTL: 24 * time.Hour,
	}

	if cfg.BotToken == "" {
		return cfg, fmt.Errorf("DRAMAHUB_BOT_TOKEN is not set")
	}

	if v := os.Getenv("DRAMAHUB_INGEST_CHANNEL"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("DRAMAHUB_INGEST_CHANNEL: %w", err)
		}
		cfg.IngestChannel = id
	}

	if v := os.Getenv("DRAMAHUB_ADMIN_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("DRAMAHUB_ADMIN_IDS: bad id %q: %w", part, err)
			}
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}

	if v := os.Getenv("DRAMAHUB_ADMIN_POLICY"); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "closed" && v != "open" {
			return cfg, fmt.Errorf("DRAMAHUB_ADMIN_POLICY must be \"closed\" or \"open\", got %q", v)
		}
		cfg.AdminPolicy = v
	}

	if v := os.Getenv("DRAMAHUB_OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}
	if v := os.Getenv("DRAMAHUB_OPS_ISSUER"); v != "" {
		cfg.OpsIssuer = v
	}
	if cfg.OpsSecret == "" {
		// dev default (change for demo / production)
		cfg.OpsSecret = "dev-secret-change-me"
	}
	if v := os.Getenv("DRAMAHUB_OPS_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return cfg, fmt.Errorf("DRAMAHUB_OPS_TTL_HOURS must be a positive integer, got %q", v)
		}
		cfg.OpsTokenTTL = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}
