package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDatabase  = "crowdfork"
	defaultRedisAddr      = "localhost:6379"
	DefaultJWTSecret      = "change-me-in-production"
	defaultAppPort        = "8000"
	defaultAppEnv         = "local"
	defaultIdentityDriver = "local"
	defaultYelpHost       = "https://api.yelp.com"
	defaultYelpTimeout    = 10 * time.Second
	defaultLocation       = "New York, NY"
)

// overridable keys: anything set in the process environment wins over files.
var envKeys = []string{
	"APP_ENV", "APP_PORT", "GRPC_PORT",
	"MONGO_URI", "MONGO_DATABASE", "MONGO_TRANSACTIONS",
	"REDIS_ADDR", "REDIS_PASSWORD",
	"IDENTITY_DRIVER", "JWT_SECRET", "FIREBASE_API_KEY", "FIREBASE_PROJECT_ID",
	"YELP_API_KEY", "YELP_API_HOST", "YELP_TIMEOUT",
	"DEFAULT_SEARCH_LOCATION", "MAX_BODY_BYTES", "RATE_LIMIT_PER_MINUTE", "TRUSTED_PROXIES",
	"LOG_MONGO_URI",
}

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json, then .env, then the process environment.
// Later sources override earlier ones. Missing files are not an error.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":         defaultAppEnv,
		"APP_PORT":        defaultAppPort,
		"MONGO_URI":       defaultMongoURI,
		"MONGO_DATABASE":  defaultMongoDatabase,
		"REDIS_ADDR":      defaultRedisAddr,
		"JWT_SECRET":      DefaultJWTSecret,
		"IDENTITY_DRIVER": defaultIdentityDriver,
		"YELP_API_HOST":   defaultYelpHost,
	}
}

func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }
func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }

// GRPCPort is empty unless the health server should be started.
func GRPCPort() string { _ = Load(); return get("GRPC_PORT", "") }

func IsProduction() bool {
	env := AppEnv()
	return env == "production" || env == "prod"
}

// ── Document store ───────────────────────────────────────────────────────────

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DATABASE", defaultMongoDatabase) }

// MongoTransactions reports whether multi-document transactions are enabled.
// They need a replica set, so the default is off.
func MongoTransactions() bool { _ = Load(); return getBool("MONGO_TRANSACTIONS", false) }

// ── Redis ────────────────────────────────────────────────────────────────────

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

// ── Identity ─────────────────────────────────────────────────────────────────

// IdentityDriver returns "local" or "firebase".
func IdentityDriver() string {
	_ = Load()
	switch d := strings.ToLower(get("IDENTITY_DRIVER", defaultIdentityDriver)); d {
	case "local", "firebase":
		return d
	default:
		return defaultIdentityDriver
	}
}

func JWTSecret() string         { _ = Load(); return get("JWT_SECRET", DefaultJWTSecret) }
func FirebaseAPIKey() string    { _ = Load(); return get("FIREBASE_API_KEY", "") }
func FirebaseProjectID() string { _ = Load(); return get("FIREBASE_PROJECT_ID", "") }

// ── External search ──────────────────────────────────────────────────────────

// YelpAPIKey may be empty; proxy routes then fail at request time.
func YelpAPIKey() string  { _ = Load(); return get("YELP_API_KEY", "") }
func YelpAPIHost() string { _ = Load(); return get("YELP_API_HOST", defaultYelpHost) }

func YelpTimeout() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("YELP_TIMEOUT", ""))
	if err != nil || d <= 0 {
		return defaultYelpTimeout
	}
	return d
}

func DefaultSearchLocation() string {
	_ = Load()
	return get("DEFAULT_SEARCH_LOCATION", defaultLocation)
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func RateLimitPerMinute() int { _ = Load(); return getInt("RATE_LIMIT_PER_MINUTE", 200) }

// TrustedProxies lists the comma-separated addresses or CIDR ranges whose
// X-Forwarded-For header is believed. Empty means none.
func TrustedProxies() []string {
	_ = Load()
	var out []string
	for _, p := range strings.Split(get("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LogMongoURI enables the MongoDB log sink when non-empty.
func LogMongoURI() string { _ = Load(); return get("LOG_MONGO_URI", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case bool:
			out[k] = strconv.FormatBool(v)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key at runtime. Tests use it to point the app at fakes.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	defer mu.Unlock()
	values[strings.ToUpper(key)] = value
}
