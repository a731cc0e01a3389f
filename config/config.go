package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr                  string
	APIGatewayURL         string
	DocumentServiceURL    string
	InternalAPIKey        string
	DocumentServiceAPIKey string
	AutosaveDebounce      time.Duration
	SnapshotInterval      time.Duration
	SessionTTL            time.Duration
	// Optional integrations — empty/zero disables them.
	RedisURL  string
	JWTSecret string
}

func Load() Config {
	return Config{
		Addr:                  ":" + getenv("PORT", "1234"),
		APIGatewayURL:         getenv("API_GATEWAY_URL", "http://localhost:8080"),
		DocumentServiceURL:    getenv("DOCUMENT_SERVICE_URL", "http://localhost:8081"),
		InternalAPIKey:        getenv("INTERNAL_API_KEY", ""),
		DocumentServiceAPIKey: getenv("DOCUMENT_SERVICE_API_KEY", ""),
		AutosaveDebounce:      time.Duration(getenvInt("AUTOSAVE_DEBOUNCE_MS", 5000)) * time.Millisecond,
		SnapshotInterval:      time.Duration(getenvInt("SNAPSHOT_INTERVAL_MINUTES", 30)) * time.Minute,
		SessionTTL:            time.Duration(getenvInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		RedisURL:              getenv("REDIS_URL", ""),
		JWTSecret:             getenv("COLLAB_JWT_SECRET", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
