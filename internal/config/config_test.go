package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreBackendRedis, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.CartTTL)
	assert.Equal(t, DefaultCartSchemaVersion, cfg.CartSchemaVersion)
	assert.True(t, decimal.RequireFromString("70").Equal(cfg.CourierMinOrder))
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Nil(t, cfg.SessionKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_TTL", "1h")
	t.Setenv("COURIER_MIN_ORDER", "99.90")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("CATALOG_URL", "http://catalog:8081/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.CartTTL)
	assert.True(t, decimal.RequireFromString("99.9").Equal(cfg.CourierMinOrder))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, StoreBackendMongo, cfg.StoreBackend)
	assert.Equal(t, "http://catalog:8081", cfg.CatalogURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"CART_TTL":          "soon",
		"COURIER_MIN_ORDER": "-1",
		"STORE_BACKEND":     "etcd",
		"CATALOG_TIMEOUT":   "-5s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.ErrorContains(t, err, key)
		})
	}
}
