package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Usage    UsageConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver string // "sqlite" | "postgres"
	DSN    string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// AuthConfig holds token-issuance configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// StorageConfig holds document file-store configuration
type StorageConfig struct {
	Type string // "local" | "s3"
	Dir  string // local backend

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// CacheConfig holds extraction-cache configuration
type CacheConfig struct {
	Dir string
}

// UsageConfig holds usage-log configuration
type UsageConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_URL", "invoice_analyzer.db"),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Type:        getEnv("STORAGE_TYPE", "local"),
			Dir:         getEnv("STORAGE_DIR", "./uploads"),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Cache: CacheConfig{
			Dir: getEnv("EXTRACTION_CACHE_DIR", "./cache"),
		},
		Usage: UsageConfig{
			Path: getEnv("USAGE_LOG_PATH", "./usage_log.csv"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be sqlite or postgres", ErrInvalidInput)
	}
	if c.Auth.JWTSecret == "" {
		return NewAppError("CONFIG_ERROR", "JWT_SECRET is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Storage.Type == "s3" && (c.Storage.S3Bucket == "" || c.Storage.S3AccessKey == "" || c.Storage.S3SecretKey == "") {
		return NewAppError("CONFIG_ERROR", "S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY are required for s3 storage", ErrInvalidInput)
	}
	return nil
}
