package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort           string
	APIBaseURL         string
	RequestTimeout     time.Duration
	OrderTimeout       time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	VisitorIdleTTL time.Duration
	VisitorCookie  string
	SecureCookie   bool

	StorageBackend string
	SQLitePath     string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	RedisAddr      string
	RedisPassword  string
	MongoURI       string
	MongoDBName    string

	KafkaBrokers []string
	KafkaTopic   string

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	p := &parser{}
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "3000"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
		RequestTimeout:     p.duration("REQUEST_TIMEOUT", 10*time.Second),
		OrderTimeout:       p.duration("ORDER_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: int64(p.integer("MAX_REQUEST_BODY_SIZE", 1<<20)), // 1MB

		VisitorIdleTTL: p.duration("VISITOR_IDLE_TTL", 30*time.Minute),
		VisitorCookie:  getEnv("VISITOR_COOKIE", "storefront_visitor"),
		SecureCookie:   p.boolean("SECURE_COOKIE", false),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageSQLite)),
		SQLitePath:     getEnv("SQLITE_PATH", "storefront.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         p.integer("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-orders"),

		BreakerMaxFailures: uint32(p.integer("BREAKER_MAX_FAILURES", 5)),
		BreakerOpenTimeout: p.duration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
	if p.err != nil {
		return nil, p.err
	}

	switch cfg.StorageBackend {
	case StorageSQLite, StoragePostgres, StorageRedis, StorageMongo, StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND: unsupported backend %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.fail(fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		p.fail(fmt.Errorf("%s: invalid positive integer %q", key, raw))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid boolean %q", key, raw))
		return def
	}
	return b
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
