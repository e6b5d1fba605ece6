package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CSRF_SECRET", "csrf")
	t.Setenv("CLIENT_TOKEN_SECRET", "client")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "2025", cfg.QuoteNumberYear)
	assert.Equal(t, 2*time.Hour, cfg.ClientTokenTTL)
	assert.Equal(t, "cotizaciones.events", cfg.KafkaTopic)
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigBrokersList(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "csrf")
	t.Setenv("CLIENT_TOKEN_SECRET", "client")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadYear(t *testing.T) {
	for _, year := range []string{"25", "20x5", "２０２５", " 202"} {
		t.Run(year, func(t *testing.T) {
			setRequired(t)
			t.Setenv("QUOTE_NUMBER_YEAR", year)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestConnectionOptions(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PG_MAX_CONNS", "25")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	redis := cfg.RedisOptions()
	assert.Equal(t, "127.0.0.1:6379", redis.Addr)
	assert.Equal(t, "pw", redis.Password)
	assert.Equal(t, 3, redis.DB)

	pool := cfg.PoolOptions("cotizaciones-worker")
	assert.EqualValues(t, 25, pool.MaxConns)
	assert.Equal(t, 30*time.Minute, pool.MaxConnLifetime)
	assert.Equal(t, "cotizaciones-worker", pool.ApplicationName)
}
