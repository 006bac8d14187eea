package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once in cmd/ and passed to constructors; nothing below cmd/
// reads the environment directly.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"` // comma separated, "*" allowed

	// Per-IP request caps, 0 disables
	RateLimitPerMinute     int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	LoginAttemptsPerMinute int `mapstructure:"LOGIN_ATTEMPTS_PER_MINUTE"`

	// Database
	DBDriver      string `mapstructure:"DB_DRIVER"` // sqlite | postgres
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	BusyTimeoutMS int    `mapstructure:"DB_BUSY_TIMEOUT_MS"`

	// Redis (optional, reorder e-mails are sent inline when empty)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Admin PIN + session tokens
	AdminPIN          string `mapstructure:"ADMIN_PIN"`
	AdminPINHash      string `mapstructure:"ADMIN_PIN_HASH"`
	SessionSecret     string `mapstructure:"SESSION_SECRET"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`

	// Files
	DataDir       string `mapstructure:"DATA_DIR"`
	ImagesDir     string `mapstructure:"IMAGES_DIR"`
	ImageS3Bucket string `mapstructure:"IMAGE_S3_BUCKET"`
	AWSRegion     string `mapstructure:"AWS_REGION"`

	// SMTP / reorder e-mail
	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT"`
	SMTPUser        string `mapstructure:"SMTP_USER"`
	SMTPPassword    string `mapstructure:"SMTP_PASSWORD"`
	ReorderTo       string `mapstructure:"REORDER_TO_EMAIL"`
	ReorderFromName string `mapstructure:"REORDER_FROM_NAME"`

	// Search
	SearchDefaultLimit int `mapstructure:"SEARCH_DEFAULT_LIMIT"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development, does not fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 1000)
	v.SetDefault("LOGIN_ATTEMPTS_PER_MINUTE", 10)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "midlands.db")
	v.SetDefault("DB_BUSY_TIMEOUT_MS", 5000)
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("ADMIN_PIN", "1234")
	v.SetDefault("ADMIN_PIN_HASH", "")
	v.SetDefault("SESSION_SECRET", "change-this-secret-key")
	v.SetDefault("SESSION_TTL_MINUTES", 180)

	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("IMAGES_DIR", "product_images")
	v.SetDefault("IMAGE_S3_BUCKET", "")
	v.SetDefault("AWS_REGION", "eu-central-1")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("REORDER_TO_EMAIL", "")
	v.SetDefault("REORDER_FROM_NAME", "Midlands Price Checker")

	v.SetDefault("SEARCH_DEFAULT_LIMIT", 25)
}

// AllowedOrigins splits CORSOrigins; an empty list means "*".
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, p := range strings.Split(c.CORSOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }
