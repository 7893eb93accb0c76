package config

import (
	"os"
	"strconv"
	"time"

	"kodbank/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	AppPort        string
	StorageDriver  string
	DatabaseURL    string
	JWTSecret      string
	SessionTTL     time.Duration
	SecureCookies  bool
	AllowedOrigin  string
	LogLevel       string
	LogJSON        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	MarketTick     time.Duration
	MarketEventLog int

	// Rate limits
	APIRateLimit     int
	APIRateWindow    time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	ActionRateLimit  int
	ActionRateWindow time.Duration

	StoreHealthInterval time.Duration
}

// Load reads configuration from the environment (and .env when present).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")

	driver := os.Getenv("STORAGE_DRIVER")
	if driver == "" {
		driver = StorageMemory
		if dbURL != "" {
			driver = StoragePostgres
		}
	}
	if driver != StorageMemory && driver != StoragePostgres {
		logger.Fatal("unknown STORAGE_DRIVER", "driver", driver)
	}
	if driver == StoragePostgres && dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		AppPort:        port,
		StorageDriver:  driver,
		DatabaseURL:    dbURL,
		JWTSecret:      jwtSecret,
		SessionTTL:     time.Duration(envInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		SecureCookies:  os.Getenv("SECURE_COOKIES") == "true",
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogJSON:        os.Getenv("LOG_JSON") == "true",
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		MarketTick:     time.Duration(envInt("MARKET_TICK_SECONDS", 5)) * time.Second,
		MarketEventLog: envInt("MARKET_EVENT_LOG_SIZE", 50),

		APIRateLimit:     envInt("API_RATE_LIMIT", 120),
		APIRateWindow:    time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:    envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:   time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		ActionRateLimit:  envInt("ACTION_RATE_LIMIT", 30),
		ActionRateWindow: time.Duration(envInt("ACTION_RATE_WINDOW_SECONDS", 60)) * time.Second,

		StoreHealthInterval: time.Duration(envInt("STORE_HEALTH_INTERVAL_SECONDS", 5)) * time.Second,
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns a positive integer from env or def.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("ignoring invalid integer env value", "key", key, "value", v)
		return def
	}
	return n
}
