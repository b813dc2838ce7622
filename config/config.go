package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Cart     CartConfig
	CORS     CORSConfig
	S3       S3Config
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Disabled keeps checkout snapshots in process memory instead of Redis.
	Disabled bool
}

type SessionConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

type CheckoutConfig struct {
	OrderAPIBaseURL     string
	OrderAPIKey         string
	StoreID             string
	DefaultCurrencyCode string
	Timeout             time.Duration
	SnapshotTTL         time.Duration
}

type CartConfig struct {
	IdleTTL         time.Duration
	SweepSchedule   string
	MaxLineQuantity int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the S3 endpoint, e.g. for MinIO. Empty uses AWS.
	Endpoint string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ShutdownTimeout: parseDuration(getEnv("SERVER_SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			Disabled: getEnv("REDIS_DISABLED", "false") == "true",
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", "your-secret-key"),
			TokenExpiry: parseDuration(getEnv("SESSION_TOKEN_EXPIRY", "72h"), 72*time.Hour),
		},
		Checkout: CheckoutConfig{
			OrderAPIBaseURL:     getEnv("ORDER_API_BASE_URL", "http://localhost:9000/api"),
			OrderAPIKey:         getEnv("ORDER_API_KEY", ""),
			StoreID:             getEnv("STORE_ID", ""),
			DefaultCurrencyCode: getEnv("DEFAULT_CURRENCY_CODE", "USD"),
			Timeout:             parseDuration(getEnv("ORDER_API_TIMEOUT", "15s"), 15*time.Second),
			SnapshotTTL:         parseDuration(getEnv("CHECKOUT_SNAPSHOT_TTL", "30m"), 30*time.Minute),
		},
		Cart: CartConfig{
			IdleTTL:         parseDuration(getEnv("CART_IDLE_TTL", "24h"), 24*time.Hour),
			SweepSchedule:   getEnv("CART_SWEEP_SCHEDULE", "@every 10m"),
			MaxLineQuantity: parseInt(getEnv("CART_MAX_LINE_QUANTITY", "999"), 999),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "storefront-catalog"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
	}

	if config.Server.Environment == "production" && config.Session.Secret == "your-secret-key" {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
