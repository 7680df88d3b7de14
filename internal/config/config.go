package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeometryPath  string
	SchedulesPath string
	Network       string

	TickInterval time.Duration
	Location     *time.Location

	LiveURL string // empty disables live mode

	NATSURL         string // empty disables publishing
	LogNATSSubjects bool

	APIAddr     string
	MetricsAddr string // empty disables the metrics server

	DatabaseURL       string        // empty disables snapshot history
	SnapshotRetention time.Duration // 0 disables pruning
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.GeometryPath = getenvDefault("GEOMETRY_PATH", "data/lines.geojson")
	cfg.SchedulesPath = getenvDefault("SCHEDULES_PATH", "data/lines.yaml")
	cfg.Network = getenvDefault("NETWORK", "rodalies")

	// Tick interval
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid TICK_INTERVAL_MS: %q", v)
		}
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	} else {
		cfg.TickInterval = 5 * time.Second
	}

	// Live positions endpoint; empty means simulation only
	cfg.LiveURL = os.Getenv("LIVE_POSITIONS_URL")

	// NATS; set NATS_URL=off to run without a broker
	cfg.NATSURL = getenvDefault("NATS_URL", "nats://127.0.0.1:4222")
	if strings.EqualFold(cfg.NATSURL, "off") {
		cfg.NATSURL = ""
	}

	// Debug logging for NATS publish subjects
	if v := os.Getenv("LOG_NATS_SUBJECTS"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.LogNATSSubjects = true
		default:
			cfg.LogNATSSubjects = false
		}
	}

	cfg.APIAddr = getenvDefault("API_ADDR", ":8080")

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	// Optional Postgres DSN for snapshot history
	cfg.DatabaseURL = firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("PG_DSN"),
	)

	// History retention; 0 disables pruning
	if v := os.Getenv("SNAPSHOT_RETENTION_H"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h < 0 {
			return nil, fmt.Errorf("invalid SNAPSHOT_RETENTION_H: %q", v)
		}
		cfg.SnapshotRetention = time.Duration(h) * time.Hour
	} else {
		cfg.SnapshotRetention = 24 * time.Hour
	}

	// Time zone
	tzName := getenvDefault("TZ", "")
	if tzName == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
