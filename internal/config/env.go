package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays deployment-level overrides from environment variables.
// Only knobs an operator plausibly flips per run are exposed; curve tables
// stay YAML-only.
func (c *Config) ApplyEnv() {
	if val, ok := getEnvInt64("TITLESIM_SEED"); ok {
		c.SeededRNG = SeededRNG{Enabled: true, Seed: val}
	}
	if val, ok := getEnvInt64("TITLESIM_HISTORY_RETENTION_DAYS"); ok && val > 0 {
		c.Store.HistoryRetentionDays = int(val)
	}
	if val, ok := getEnvFloat("TITLESIM_FLUSH_INTERVAL_SECONDS"); ok && val > 0 {
		c.Store.FlushIntervalSeconds = val
	}
}

func getEnvInt64(key string) (int64, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

func getEnvFloat(key string) (float64, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}
