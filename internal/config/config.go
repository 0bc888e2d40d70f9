// Package config loads application configuration from environment
// variables. A .env file in the working directory is honored when
// present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the storefront client. Each
// field corresponds to an environment variable; unset variables fall
// back to defaults that work against a local stub backend.
type Config struct {
	APIBaseURL  string        // base URL of the storefront backend
	HTTPTimeout time.Duration // per-request timeout

	Debounce      time.Duration // startup profile-fetch debounce
	RetryAttempts int           // post-login profile fetch attempts (total)
	RetryDelay    time.Duration // fixed delay between attempts

	StoreBackend string        // "memory", "file" or "redis"
	StoreDir     string        // directory for the file backend
	StorePrefix  string        // key prefix for the redis backend
	StoreTTL     time.Duration // expiry for redis-held state (0 = none)

	EventsEnabled bool   // publish session/cart events to RabbitMQ
	BrokerURL     string // AMQP connection string ("" = env/default)
}

// Load reads the client configuration. A missing .env file is not an
// error.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		APIBaseURL:    envStr("API_BASE_URL", "http://localhost:8080"),
		HTTPTimeout:   envDur("HTTP_TIMEOUT", 30*time.Second),
		Debounce:      envDur("PROFILE_DEBOUNCE", 100*time.Millisecond),
		RetryAttempts: envInt("PROFILE_RETRY_ATTEMPTS", 3),
		RetryDelay:    envDur("PROFILE_RETRY_DELAY", 200*time.Millisecond),
		StoreBackend:  envStr("STORE_BACKEND", "file"),
		StoreDir:      envStr("STORE_DIR", defaultStoreDir()),
		StorePrefix:   envStr("STORE_PREFIX", "storefront:"),
		StoreTTL:      envDur("STORE_TTL", 0),
		EventsEnabled: envBool("EVENTS_ENABLED", false),
		BrokerURL:     os.Getenv("RABBITMQ_URL"),
	}
}

// StubConfig holds the settings of the development stub backend.
type StubConfig struct {
	Port                string
	JWTSecret           string
	AccessTTLMin        int
	BcryptCost          int
	EmptyMutationBodies bool
	TokenInBody         bool
	SeedDemo            bool // seed demo user and catalog on startup
}

// LoadStub reads the stub backend configuration.
func LoadStub() StubConfig {
	_ = godotenv.Load()
	return StubConfig{
		Port:                envStr("STUB_PORT", "8080"),
		JWTSecret:           envStr("STUB_JWT_SECRET", "dev-secret"),
		AccessTTLMin:        envInt("STUB_ACCESS_TTL_MIN", 60),
		BcryptCost:          envInt("STUB_BCRYPT_COST", 10),
		EmptyMutationBodies: envBool("STUB_EMPTY_MUTATION_BODIES", true),
		TokenInBody:         envBool("STUB_TOKEN_IN_BODY", true),
		SeedDemo:            envBool("STUB_SEED_DEMO", true),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return home + "/.storefront"
}
