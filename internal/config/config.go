package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageBackendMinIO = "minio"
	StorageBackendS3    = "s3"
)

type Config struct {
	Server    ServerConfig
	Identity  IdentityConfig
	DB        DBConfig
	Storage   StorageConfig
	JWT       JWTConfig
	Retention RetentionConfig
}

type ServerConfig struct {
	Port           string
	BodyLimit      int
	AllowedOrigins []string
}

// IdentityConfig points at the hosted auth provider (GoTrue-compatible REST API).
type IdentityConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type DBConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type StorageConfig struct {
	Backend   string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type RetentionConfig struct {
	TrashTTL      time.Duration
	SweepInterval time.Duration
}

// Load reads an optional .env file and then builds the configuration from
// the process environment. Call Validate before using the result.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			BodyLimit:      getEnvAsInt("MAX_UPLOAD_BYTES", 100*1024*1024),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"https://driveclonekd.netlify.app"}),
		},
		Identity: IdentityConfig{
			URL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			APIKey:  getEnv("SUPABASE_KEY", ""),
			Timeout: getEnvAsDuration("IDENTITY_TIMEOUT", 30*time.Second),
		},
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", DBDriverPostgres),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", StorageBackendMinIO),
			Endpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("SUPABASE_BUCKET", "drive_files"),
			UseSSL:    getEnvAsBool("STORAGE_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET_KEY", getEnv("JWT_SECRET", "")),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Retention: RetentionConfig{
			TrashTTL:      getEnvAsDuration("TRASH_RETENTION", 30*24*time.Hour),
			SweepInterval: getEnvAsDuration("TRASH_SWEEP_INTERVAL", 0),
		},
	}
}

// Validate reports every missing or unsupported setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Identity.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Identity.APIKey == "" {
		errs = append(errs, errors.New("SUPABASE_KEY is required"))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("SUPABASE_BUCKET is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}

	switch c.DB.Driver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}

	switch c.Storage.Backend {
	case StorageBackendMinIO, StorageBackendS3:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend))
	}

	if c.Retention.TrashTTL <= 0 {
		errs = append(errs, errors.New("TRASH_RETENTION must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
