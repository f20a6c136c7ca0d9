package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("STORAGE_DRIVER", StorageMemory)
	v.Set("PORT", "9000")
	v.Set("JWT_EXPIRY_DURATION", "30m")
	v.Set("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
	v.Set("ACCOUNTS_PAYABLE_CODE", "2202")
	v.Set("TAX_PAYABLE_CODE", "2221")
	v.Set("CONFLICT_RETRIES", 5)
	return v
}

func TestFromViper_Memory(t *testing.T) {
	cfg, err := fromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiryDuration)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.ConflictRetries)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromViper_PostgresNeedsURL(t *testing.T) {
	v := baseViper()
	v.Set("STORAGE_DRIVER", StoragePostgres)
	_, err := fromViper(v)
	assert.ErrorContains(t, err, "PGSQL_URL")
}

func TestFromViper_ProductionNeedsSecret(t *testing.T) {
	v := baseViper()
	v.Set("IS_PRODUCTION", true)
	_, err := fromViper(v)
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromViper_Defaults(t *testing.T) {
	v := baseViper()
	v.Set("JWT_EXPIRY_DURATION", "nonsense")
	v.Set("CONFLICT_RETRIES", 0)
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, 1, cfg.ConflictRetries)
}

func TestFromViper_UnknownDriver(t *testing.T) {
	v := baseViper()
	v.Set("STORAGE_DRIVER", "sqlite")
	_, err := fromViper(v)
	assert.Error(t, err)
}
