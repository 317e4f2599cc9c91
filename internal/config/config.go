package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Asset backends
const (
	AssetBackendLocal = "local"
	AssetBackendS3    = "s3"
)

// DefaultJWTSecret is the signing key used when JWT_SECRET is unset
const DefaultJWTSecret = "secret"

// Config holds application configuration
type Config struct {
	Port     string `validate:"required,numeric"`
	DBDriver string `validate:"required,oneof=postgres sqlite"`
	DBConn   string `validate:"required"`

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int `validate:"min=0,max=1024"`
	LogMaxBackups int `validate:"min=0,max=100"`
	LogMaxAgeDays int `validate:"min=0,max=365"`

	JWTSecret string        `validate:"required"`
	TokenTTL  time.Duration `validate:"required,gt=0"`

	FrontendURL string `validate:"required"`
	BaseURL     string `validate:"required,url"`

	AssetBackend string `validate:"required,oneof=local s3"`
	UploadDir    string `validate:"required_if=AssetBackend local"`
	S3Bucket     string `validate:"required_if=AssetBackend s3"`
	S3Region     string `validate:"required_if=AssetBackend s3"`
	S3Endpoint   string
	S3AccessKey  string `validate:"required_if=AssetBackend s3"`
	S3SecretKey  string `validate:"required_if=AssetBackend s3"`
	S3PublicURL  string `validate:"required_if=AssetBackend s3"`

	SMTPHost     string
	SMTPPort     string `validate:"required_with=SMTPHost"`
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string `validate:"required_with=SMTPHost"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", DriverPostgres),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=cars sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		JWTSecret:     getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:      tokenTTL,
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:8080"),
		BaseURL:       strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		AssetBackend:  getEnv("ASSET_BACKEND", AssetBackendLocal),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:   strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct constraints of the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// AssetURLPrefix is the public base under which stored images are reachable
func (c *Config) AssetURLPrefix() string {
	if c.AssetBackend == AssetBackendS3 {
		return c.S3PublicURL
	}
	return c.BaseURL + "/uploads"
}

// UsesDefaultSecret reports whether tokens are signed with the built-in development key
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// NotificationsEnabled reports whether SMTP delivery is configured
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return n
}
