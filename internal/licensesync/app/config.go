package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SLSBaseURL  string        // Required: base URL of the license service API
	SLSUsername string        // Optional: login used to obtain a token on start-up
	SLSPassword string        // Optional: password for SLSUsername
	SLSToken    string        // Optional: static token used when no credentials are set
	SLSTimeout  time.Duration // Optional: per-request timeout for the license service (default: 30s)

	DatabaseFile      string            // Optional: path to SQLite database file (default: ./licensesync.db)
	WebhookSecret     string            // Optional: HMAC secret for order webhooks, unsigned when empty
	ProductMap        map[string]string // Optional: SKU or product id to "product_slug[:tier_code]"
	ReconcileInterval time.Duration     // Optional: order reconciliation interval (default: 15m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SLSBaseURL:  os.Getenv("SLS_BASE_URL"),
		SLSUsername: os.Getenv("SLS_USERNAME"),
		SLSPassword: os.Getenv("SLS_PASSWORD"),
		SLSToken:    os.Getenv("SLS_TOKEN"),
		SLSTimeout:  getEnvDurationOrDefault("SLS_TIMEOUT", 30*time.Second),

		DatabaseFile:      getEnvOrDefault("LICENSESYNC_DATABASE_FILE", "licensesync.db"),
		WebhookSecret:     os.Getenv("LICENSESYNC_WEBHOOK_SECRET"),
		ProductMap:        parseProductMap(os.Getenv("LICENSESYNC_PRODUCT_MAP")),
		ReconcileInterval: getEnvDurationOrDefault("LICENSESYNC_RECONCILE_INTERVAL", 15*time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// parseProductMap reads "sku=slug:tier,sku2=slug2" pairs. Malformed entries
// are skipped.
func parseProductMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(entry), "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
