package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	AppOrigin   string `yaml:"app_origin"`
	CORSOrigins string `yaml:"cors_origins"`

	// Database
	DatabaseURL        string `yaml:"database_url"`
	ServiceDatabaseURL string `yaml:"service_database_url"`
	MigrateOnStart     bool   `yaml:"migrate_on_start"`

	// WaitlistSchemaBootstrap enables creating the waitlist table at request
	// time when it is missing.
	WaitlistSchemaBootstrap bool `yaml:"waitlist_schema_bootstrap"`
	// WaitlistRateLimit is the number of signups allowed per client address
	// per minute.
	WaitlistRateLimit int `yaml:"waitlist_rate_limit"`

	// Sessions
	SessionSecret   string        `yaml:"session_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	CookieDomain    string        `yaml:"cookie_domain"`
	ResetTokenTTL   time.Duration `yaml:"reset_token_ttl"`

	// RefreshReuseGrace is how long a rotated refresh token still yields an
	// access token, so parallel requests carrying it are not signed out.
	RefreshReuseGrace time.Duration `yaml:"refresh_reuse_grace"`

	// Mail
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	MailFrom     string `yaml:"mail_from"`
}

// Load reads CONFIG_FILE (if set) and then applies environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:              "8080",
		Environment:       "development",
		AppOrigin:         "http://localhost:3000",
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   30 * 24 * time.Hour,
		ResetTokenTTL:     30 * time.Minute,
		RefreshReuseGrace: 30 * time.Second,
		WaitlistRateLimit: 5,
		SMTPPort:          587,
		MailFrom:          "FoodAI <no-reply@foodai.app>",
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AppOrigin = getEnv("APP_ORIGIN", cfg.AppOrigin)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServiceDatabaseURL = getEnv("DATABASE_SERVICE_URL", cfg.ServiceDatabaseURL)
	cfg.MigrateOnStart = getEnvBool("MIGRATE_ON_START", cfg.MigrateOnStart || cfg.Environment == "development")
	cfg.WaitlistSchemaBootstrap = getEnvBool("WAITLIST_SCHEMA_BOOTSTRAP", cfg.WaitlistSchemaBootstrap)
	cfg.WaitlistRateLimit = getEnvInt("WAITLIST_RATE_LIMIT", cfg.WaitlistRateLimit)

	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.AccessTokenTTL = getEnvDuration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	cfg.RefreshTokenTTL = getEnvDuration("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL)
	cfg.CookieDomain = getEnv("COOKIE_DOMAIN", cfg.CookieDomain)
	cfg.ResetTokenTTL = getEnvDuration("RESET_TOKEN_TTL", cfg.ResetTokenTTL)
	cfg.RefreshReuseGrace = getEnvDuration("REFRESH_REUSE_GRACE", cfg.RefreshReuseGrace)

	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUser = getEnv("SMTP_USER", cfg.SMTPUser)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.MailFrom)
}

// Validate checks the two values the service cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	return nil
}

// SecureCookies is true where the site is only reachable over HTTPS.
func (c *Config) SecureCookies() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

// AllowedOrigins returns the CORS allow-list: APP_ORIGIN plus CORS_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	if c.AppOrigin != "" {
		origins = append(origins, c.AppOrigin)
	}
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
