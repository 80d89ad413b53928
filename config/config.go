// Package config loads server configuration from a .env file and the
// environment. Values have development defaults; command-line flags in
// cmd/server override the port and database path.
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
	Port               int
	DBPath             string
	WeeklyCapHours     int
	OvertimeMultiplier float64
	AllowedOrigins     []string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	capHours, err := intEnv("WEEKLY_CAP_HOURS", 40)
	if err != nil {
		return nil, err
	}
	multiplier, err := floatEnv("OVERTIME_MULTIPLIER", 1.5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               port,
		DBPath:             getEnv("DB_PATH", "workforce.db"),
		WeeklyCapHours:     capHours,
		OvertimeMultiplier: multiplier,
		AllowedOrigins:     splitEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"),
	}, nil
}

// WeeklyCap returns the cap as a duration.
func (c *Config) WeeklyCap() time.Duration {
	return time.Duration(c.WeeklyCapHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	result := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
