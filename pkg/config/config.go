package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port           string
	Env            string // development, staging, production
	AllowedOrigins []string

	// Rate limiting for inbound API requests
	RateLimitRPS   float64
	RateLimitBurst int

	// Database (session summaries + baselines)
	Database DatabaseConfig

	// Redis (feature cache + shared rate limit)
	Redis RedisConfig

	// MQTT (summary publishing)
	MQTT MQTTConfig

	// Signal capabilities
	SignalServiceURL string

	// Pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled bool
	URL     string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool

	FeatureCacheTTL time.Duration
}

// MQTTConfig holds broker settings for the summary publisher
type MQTTConfig struct {
	Enabled      bool
	Broker       string
	ClientID     string
	Username     string
	Password     string
	SummaryTopic string // e.g. "ecg/summary/{user_id}"
}

// PipelineConfig holds runtime knobs of the feature pipeline.
// Numeric thresholds live in the pipeline YAML (see internal/pipelineconfig).
type PipelineConfig struct {
	File    string // optional thresholds YAML
	Workers int    // per-session segment workers
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:           getEnv("PORT", "8001"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 40),

		// Database
		Database: DatabaseConfig{
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:            getEnv("REDIS_HOST", "localhost"),
			Port:            getEnv("REDIS_PORT", "6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getEnvAsInt("REDIS_DB", 0),
			Enabled:         getEnvAsBool("REDIS_ENABLED", false),
			FeatureCacheTTL: getEnvAsDuration("FEATURE_CACHE_TTL", "10m"),
		},

		// MQTT
		MQTT: MQTTConfig{
			Enabled:      getEnvAsBool("MQTT_ENABLED", false),
			Broker:       getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID:     getEnv("MQTT_CLIENT_ID", "ecg-service"),
			Username:     getEnv("MQTT_USERNAME", ""),
			Password:     getEnv("MQTT_PASSWORD", ""),
			SummaryTopic: getEnv("MQTT_TOPIC_SUMMARY", "ecg/summary/{user_id}"),
		},

		SignalServiceURL: getEnv("SIGNAL_SERVICE_URL", ""),

		Pipeline: PipelineConfig{
			File:    getEnv("PIPELINE_FILE", ""),
			Workers: getEnvAsInt("PIPELINE_WORKERS", 4),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DB_ENABLED=true")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be >= 1")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS must be > 0 and RATE_LIMIT_BURST >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
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
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
