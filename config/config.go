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

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Neo4j     Neo4jConfig
	Store     StoreConfig
	Detection DetectionConfig
	Scheduler SchedulerConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// DSN overrides the individual fields when set.
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

type StoreConfig struct {
	Backend string
}

// DetectionConfig holds the default thresholds applied to runs that do not override them.
type DetectionConfig struct {
	MinClaims            int
	MinAvgAmount         float64
	MinSharedClaims      int
	MinStagedClaims      int
	MinConnections       int
	MinAdjusterCollusion int
	LockTTL              time.Duration
}

type SchedulerConfig struct {
	Enabled  bool
	Schedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	APIKey      string
	RateLimit   float64
	RateBurst   int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "fraud"),
			DSN:      getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:     getEnv("NEO4J_USER", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", ""),
			Database: getEnv("NEO4J_DATABASE", "neo4j"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "neo4j"),
		},
		Detection: DetectionConfig{
			MinClaims:            getEnvAsInt("DETECT_MIN_CLAIMS", 5),
			MinAvgAmount:         getEnvAsFloat("DETECT_MIN_AVG_AMOUNT", 15000),
			MinSharedClaims:      getEnvAsInt("DETECT_MIN_SHARED_CLAIMS", 3),
			MinStagedClaims:      getEnvAsInt("DETECT_MIN_STAGED_CLAIMS", 2),
			MinConnections:       getEnvAsInt("DETECT_MIN_CONNECTIONS", 3),
			MinAdjusterCollusion: getEnvAsInt("DETECT_MIN_ADJUSTER_COLLUSION", 4),
			LockTTL:              time.Duration(getEnvAsInt("DETECT_LOCK_TTL_MINUTES", 30)) * time.Minute,
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvAsBool("DETECTION_SCHEDULE_ENABLED", true),
			Schedule: getEnv("DETECTION_SCHEDULE", "0 0 2 * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			APIKey:      getEnv("API_KEY", ""),
			RateLimit:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			RateBurst:   getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case "neo4j":
		if c.Neo4j.URI == "" {
			return fmt.Errorf("NEO4J_URI is required for the neo4j store")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be neo4j or memory, got %q", c.Store.Backend)
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.App.Environment == "production" && c.App.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.App.RateLimit <= 0 || c.App.RateBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
