package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ClientStoreMemory  = "memory"
	ClientStoreRedis   = "redis"
	ClientStoreStoolap = "stoolap"
)

type Config struct {
	Port        string
	DBUrl       string
	JWTSecret   string
	JWTExpiry   time.Duration
	ClientURL   string
	UploadDir   string
	AppEnv      string
	EnableDocs  bool
	ClientStore string
	RedisURL    string
	StoolapDSN  string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	jwtExpiry, err := parseExpiry(getEnv("JWT_EXPIRE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}

	clientStore := strings.ToLower(strings.TrimSpace(getEnv("CLIENT_STORE", ClientStoreMemory)))
	switch clientStore {
	case ClientStoreMemory, ClientStoreRedis, ClientStoreStoolap:
	default:
		return nil, fmt.Errorf("unsupported CLIENT_STORE %q", clientStore)
	}

	return &Config{
		Port:        getEnv("PORT", "5000"),
		DBUrl:       getEnv("DB_URL", ""),
		JWTSecret:   jwtSecret,
		JWTExpiry:   jwtExpiry,
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads/images"),
		AppEnv:      normalizeEnv(getEnv("APP_ENV", "production")),
		EnableDocs:  getEnvBool("ENABLE_API_DOCS", false),
		ClientStore: clientStore,
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StoolapDSN:  getEnv("STOOLAP_DSN", "file://data/clientstate.db"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// parseExpiry accepts Go durations ("90m", "24h") and whole days ("7d").
func parseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day count %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive")
	}
	return d, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}
