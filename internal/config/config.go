package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis RedisConfig
	Email EmailConfig

	Submission   SubmissionConfig
	Notification NotificationConfig
	Bootstrap    BootstrapConfig

	SiteConfigPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

type SubmissionConfig struct {
	ReferencePrefix string
	// Public write endpoints (submit, remove, contact) share one bucket per client IP.
	RateLimitPerMinute int
	RateLimitBurst     int
}

type NotificationConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
}

type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminAPIKey   string
	SeedPricing   bool
}

var referencePrefixPattern = regexp.MustCompile(`^[A-Z]+$`)

// Load loads configuration from environment variables and .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "obtain"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "obtain"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			SMTPHost:     strings.TrimSpace(getenv("SMTP_HOST", "")),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: strings.TrimSpace(getenv("SMTP_USERNAME", "")),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     strings.TrimSpace(getenv("SMTP_FROM", "no-reply@obtain.ai")),
		},
		Submission: SubmissionConfig{
			ReferencePrefix:    strings.ToUpper(strings.TrimSpace(getenv("SUBMISSION_REFERENCE_PREFIX", "APP"))),
			RateLimitPerMinute: getenvInt("PUBLIC_RATE_LIMIT_PER_MINUTE", 10),
			RateLimitBurst:     getenvInt("PUBLIC_RATE_LIMIT_BURST", 5),
		},
		Notification: NotificationConfig{
			BatchSize:    getenvInt("NOTIFICATION_BATCH_SIZE", 25),
			PollInterval: getenvDuration("NOTIFICATION_POLL_INTERVAL", 5*time.Second),
			MaxAttempts:  getenvInt("NOTIFICATION_MAX_ATTEMPTS", 5),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_EMAIL", "")),
			AdminPassword: getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
			AdminAPIKey:   strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_API_KEY", "")),
			SeedPricing:   getenvBool("BOOTSTRAP_SEED_PRICING", true),
		},
		SiteConfigPath: strings.TrimSpace(getenv("SITE_CONFIG_PATH", "")),
	}

	if !referencePrefixPattern.MatchString(cfg.Submission.ReferencePrefix) {
		return Config{}, fmt.Errorf("config: SUBMISSION_REFERENCE_PREFIX must contain only letters A-Z, got %q", cfg.Submission.ReferencePrefix)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
