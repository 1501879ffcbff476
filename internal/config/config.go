package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
type Config struct {
	Port string
	Host string

	DatabaseURL string

	DefaultPageSize int
	MaxPageSize     int
	CurrencySymbol  string

	RegionsFile    string
	MatchThreshold int

	CacheEnabled bool
	CacheTTL     time.Duration
	RedisURL     string

	IndexRebuildSpec string

	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float32

	JWTSecret   string
	MaxUploadMB int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:              GetEnv("PORT", "8000"),
		Host:              GetEnv("HOST", "0.0.0.0"),
		DatabaseURL:       GetEnv("DATABASE_URL", "sqlite://./agentjobs.db"),
		DefaultPageSize:   GetEnvInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:       GetEnvInt("MAX_PAGE_SIZE", 100),
		CurrencySymbol:    GetEnv("CURRENCY_SYMBOL", "₹"),
		RegionsFile:       GetEnv("REGIONS_FILE", ""),
		MatchThreshold:    GetEnvInt("MATCH_THRESHOLD", 30),
		CacheEnabled:      GetEnvBool("CACHE_ENABLED", false),
		CacheTTL:          GetEnvDuration("CACHE_TTL", time.Minute),
		RedisURL:          GetEnv("REDIS_URL", ""),
		IndexRebuildSpec:  GetEnv("INDEX_REBUILD_SPEC", "@every 6h"),
		GeminiAPIKey:      GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:       GetEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTemperature: GetEnvFloat32("GEMINI_TEMPERATURE", 0.2),
		JWTSecret:         GetEnv("JWT_SECRET", ""),
		MaxUploadMB:       GetEnvInt("MAX_UPLOAD_MB", 5),
		LogLevel:          GetEnv("LOG_LEVEL", "INFO"),
		LogFormat:         GetEnv("LOG_FORMAT", "json"),
	}
}

// Validate fails fast on settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DefaultPageSize <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize))
	}
	if c.MaxPageSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize))
	}
	if c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE %d exceeds MAX_PAGE_SIZE %d", c.DefaultPageSize, c.MaxPageSize))
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		errs = append(errs, fmt.Errorf("MATCH_THRESHOLD must be within 0..100, got %d", c.MatchThreshold))
	}
	if c.IndexRebuildSpec != "" {
		if _, err := cron.ParseStandard(c.IndexRebuildSpec); err != nil {
			errs = append(errs, fmt.Errorf("INDEX_REBUILD_SPEC %q: %w", c.IndexRebuildSpec, err))
		}
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB))
	}
	return errors.Join(errs...)
}

// GeminiEnabled reports whether query expansion can be offered.
func (c *Config) GeminiEnabled() bool {
	return c.GeminiAPIKey != ""
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func GetEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// GetEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
