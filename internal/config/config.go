package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/feed_shop/pkg/config"
)

type Config struct {
	config.Config

	Production bool
	StaticDir  string

	SessionSecret        []byte
	SessionTTL           time.Duration
	SessionPruneInterval time.Duration

	PaymentKeyID         string
	PaymentKeySecret     string
	PaymentWebhookSecret []byte
	PaymentBaseURL       string
	PaymentTimeout       time.Duration
	PaymentCurrency      string

	AdminUsername string
	AdminPassword string
	AdminEmail    string
	AdminPhone    string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CSRFEnabled bool
}

// GatewayEnabled reports whether real gateway credentials are configured.
func (c *Config) GatewayEnabled() bool {
	return c.PaymentKeyID != "" && c.PaymentKeySecret != ""
}

func LoadDotEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
}

func Load() *Config {
	base := config.Load()

	cfg := &Config{
		Config:     base,
		Production: strings.EqualFold(os.Getenv("APP_ENV"), "production"),
		StaticDir:  os.Getenv("STATIC_DIR"),

		SessionTTL:           config.EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		SessionPruneInterval: config.EnvDurationDefault("SESSION_PRUNE_INTERVAL", time.Hour),

		PaymentKeyID:     os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret: os.Getenv("PAYMENT_KEY_SECRET"),
		PaymentBaseURL:   os.Getenv("PAYMENT_BASE_URL"),
		PaymentTimeout:   config.EnvDurationDefault("PAYMENT_TIMEOUT", 10*time.Second),
		PaymentCurrency:  config.EnvDefault("PAYMENT_CURRENCY", "INR"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPhone:    os.Getenv("ADMIN_PHONE"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "products"),

		CSRFEnabled: config.EnvBoolDefault("CSRF_ENABLED", false),
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustPair(cfg.PaymentKeyID, "PAYMENT_KEY_ID", cfg.PaymentKeySecret, "PAYMENT_KEY_SECRET")
	config.MustPair(cfg.AdminUsername, "ADMIN_USERNAME", cfg.AdminPassword, "ADMIN_PASSWORD")

	if s := os.Getenv("SESSION_SECRET"); s != "" {
		cfg.SessionSecret = []byte(s)
	} else {
		cfg.SessionSecret = randomSecret()
		log.Printf("Notice: SESSION_SECRET not set, sessions will not survive a restart")
	}

	if s := os.Getenv("PAYMENT_WEBHOOK_SECRET"); s != "" {
		cfg.PaymentWebhookSecret = []byte(s)
	} else {
		cfg.PaymentWebhookSecret = cfg.SessionSecret
		if !cfg.GatewayEnabled() {
			log.Printf("Notice: PAYMENT_WEBHOOK_SECRET not set, mock payment callbacks are signed with the session secret")
		}
	}

	return cfg
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("generate session secret: %v", err)
	}
	return []byte(hex.EncodeToString(b))
}
