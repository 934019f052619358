// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Used when JWT_SECRET is unset so a local checkout still boots.
const devJWTSecret = "dev-secret-change-me"

// Config holds the runtime settings of the storefront
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    []byte
	JWTTTL       time.Duration
	CORSOrigins  []string

	EmailProvider  string // "postmark", "sendgrid" or empty for log only
	PostmarkToken  string
	SendGridAPIKey string
	EmailSender    string
	MongoURI       string
	MongoDatabase  string
	Production     bool
}

// LoadEnvFile loads variables from a .env file. A missing file is not an error,
// the process falls back to the real environment.
func LoadEnvFile(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3001"),
		DatabasePath:   getEnv("DATABASE_PATH", "storefront.db"),
		EmailProvider:  strings.ToLower(os.Getenv("EMAIL_PROVIDER")),
		PostmarkToken:  os.Getenv("POSTMARK_API_TOKEN"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@storefront.local"),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "storefront"),
		Production:     os.Getenv("APP_ENV") == "production",
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.Production {
			return nil, fmt.Errorf("JWT_SECRET is not set")
		}
		log.Println("JWT_SECRET is not set, using the development secret")
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL: must be positive")
	}
	cfg.JWTTTL = ttl

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	} else {
		cfg.CORSOrigins = []string{"*"}
	}

	switch cfg.EmailProvider {
	case "", "postmark", "sendgrid":
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
