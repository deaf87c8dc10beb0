package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment, built once in main and
// passed by reference. Business logic never reads the environment directly.
type Config struct {
	Port      string
	DBPath    string
	BaseURL   string
	LogLevel  string
	LogFormat string

	// Web Push / VAPID
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	// Static bearer secrets for internal and cron endpoints
	InternalAPISecret string
	CronSecret        string

	// Postmark digest email channel
	PostmarkServerToken string
	EmailFrom           string
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists.
func Load() *Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("FAMILYPULSE_PORT", "8080"),
		DBPath:              getEnv("FAMILYPULSE_DB_PATH", "familypulse.db"),
		BaseURL:             getEnv("FAMILYPULSE_BASE_URL", "http://localhost:8080"),
		LogLevel:            getEnv("FAMILYPULSE_LOG_LEVEL", "info"),
		LogFormat:           getEnv("FAMILYPULSE_LOG_FORMAT", "text"),
		VAPIDPublicKey:      os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:     os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubscriber:     getEnv("VAPID_SUBSCRIBER", "mailto:noreply@familypulse.app"),
		InternalAPISecret:   os.Getenv("INTERNAL_API_SECRET"),
		CronSecret:          os.Getenv("CRON_SECRET"),
		PostmarkServerToken: os.Getenv("POSTMARK_SERVER_TOKEN"),
		EmailFrom:           getEnv("EMAIL_FROM", "hello@familypulse.app"),
	}

	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		log.Println("WARNING: VAPID keys not set; push delivery disabled. Generate a pair with: familypulse -genkeys")
	}
	if cfg.CronSecret == "" {
		log.Println("WARNING: CRON_SECRET not set; cron endpoints will reject all requests")
	}
	if cfg.InternalAPISecret == "" {
		log.Println("WARNING: INTERNAL_API_SECRET not set; /notifications/send will reject all requests")
	}

	return cfg
}

// PushConfigured reports whether a VAPID key pair is available.
func (c *Config) PushConfigured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
