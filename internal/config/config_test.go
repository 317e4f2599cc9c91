package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, AssetBackendLocal, cfg.AssetBackend)
	assert.Equal(t, "http://localhost:8080/uploads", cfg.AssetURLPrefix())
	assert.False(t, cfg.NotificationsEnabled())
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestNewConfig_CustomSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-long-random-signing-key")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_CONN", "/tmp/cars.db")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BASE_URL", "https://cars.example.com/")
	t.Setenv("LOG_MAX_SIZE_MB", "50")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/cars.db", cfg.DBConn)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "https://cars.example.com", cfg.BaseURL)
	assert.Equal(t, "https://cars.example.com/uploads", cfg.AssetURLPrefix())
	assert.Equal(t, 50, cfg.LogMaxSizeMB)
}

func TestNewConfig_InvalidTokenTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "TOKEN_TTL")
}

func TestNewConfig_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "DBDriver")
}

func TestNewConfig_EmptySecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "JWTSecret")
}

func TestNewConfig_S3RequiresBucket(t *testing.T) {
	t.Setenv("ASSET_BACKEND", "s3")
	t.Setenv("S3_ACCESS_KEY", "admin")
	t.Setenv("S3_SECRET_KEY", "secretpassword")
	t.Setenv("S3_PUBLIC_URL", "http://127.0.0.1:9000/cars")

	_, err := NewConfig()
	require.ErrorContains(t, err, "S3Bucket")

	t.Setenv("S3_BUCKET", "cars")
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/cars", cfg.AssetURLPrefix())
}

func TestNewConfig_SMTPRequiresSender(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")

	_, err := NewConfig()
	require.ErrorContains(t, err, "SenderEmail")

	t.Setenv("SENDER_EMAIL", "noreply@example.com")
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.True(t, cfg.NotificationsEnabled())
}
