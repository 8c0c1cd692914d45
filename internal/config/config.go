package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StoreBackendRedis = "redis"
	StoreBackendMongo = "mongo"
	// StoreBackendMemory keeps session state in process, for local runs only.
	StoreBackendMemory = "memory"

	// DefaultCartTTL is the freshness window of a persisted cart.
	DefaultCartTTL           = 24 * time.Hour
	DefaultCartSchemaVersion = "2"
	DefaultDraftVersion      = "1"
	DefaultDraftTTL          = 30 * 24 * time.Hour
	DefaultCourierMinOrder   = "70.00"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogURL     string
	CatalogTimeout time.Duration

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	StoreTTL      time.Duration
	MongoURI      string
	MongoDBName   string

	KafkaBrokers []string
	OrdersTopic  string

	SessionKey         []byte
	SessionIdleTimeout time.Duration

	CartTTL           time.Duration
	CartSchemaVersion string
	DraftVersion      string
	DraftTTL          time.Duration
	CourierMinOrder   decimal.Decimal
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CatalogURL:        strings.TrimRight(getEnv("CATALOG_URL", "http://localhost:8081"), "/"),
		StoreBackend:      getEnv("STORE_BACKEND", StoreBackendRedis),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "storefront"),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		OrdersTopic:       getEnv("ORDERS_TOPIC", "storefront-orders"),
		CartSchemaVersion: getEnv("CART_SCHEMA_VERSION", DefaultCartSchemaVersion),
		DraftVersion:      getEnv("DRAFT_SCHEMA_VERSION", DefaultDraftVersion),
	}

	var err error
	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", 10 * time.Second, &cfg.ShutdownTimeout},
		{"CATALOG_TIMEOUT", 5 * time.Second, &cfg.CatalogTimeout},
		{"STORE_TTL", 7 * 24 * time.Hour, &cfg.StoreTTL},
		{"SESSION_IDLE_TIMEOUT", 2 * time.Hour, &cfg.SessionIdleTimeout},
		{"CART_TTL", DefaultCartTTL, &cfg.CartTTL},
		{"DRAFT_TTL", DefaultDraftTTL, &cfg.DraftTTL},
	}
	for _, d := range durations {
		if *d.dest, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.CourierMinOrder, err = decimal.NewFromString(getEnv("COURIER_MIN_ORDER", DefaultCourierMinOrder))
	if err != nil {
		return nil, fmt.Errorf("invalid COURIER_MIN_ORDER: %w", err)
	}
	if cfg.CourierMinOrder.IsNegative() {
		return nil, fmt.Errorf("invalid COURIER_MIN_ORDER: must not be negative")
	}

	switch cfg.StoreBackend {
	case StoreBackendRedis, StoreBackendMongo, StoreBackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: expected %s, %s or %s",
			cfg.StoreBackend, StoreBackendRedis, StoreBackendMongo, StoreBackendMemory)
	}

	if key := getEnv("SESSION_KEY", ""); key != "" {
		cfg.SessionKey = []byte(key)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
