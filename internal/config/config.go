package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	CountdownDelay time.Duration // all-ready to race start
	RaceDuration   time.Duration // force-end ceiling
	TeardownDelay  time.Duration // results broadcast to room purge
	// AllowedOrigins holds origin patterns permitted to open a websocket.
	// Empty means same-origin only.
	AllowedOrigins []string
	DevLogging     bool
}

func Load() Config {
	return Config{
		Addr:           getEnv("ADDR", ":8080"),
		CountdownDelay: getEnvDuration("COUNTDOWN_DELAY", 3*time.Second),
		RaceDuration:   getEnvDuration("RACE_DURATION", 60*time.Second),
		TeardownDelay:  getEnvDuration("TEARDOWN_DELAY", 5*time.Second),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
		DevLogging:     getEnvBool("DEV_LOGGING", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
