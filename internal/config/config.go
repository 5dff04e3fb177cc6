package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat selects the log encoding
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// StoreBackend represents the kind of store the gateway talks to
type StoreBackend string

const (
	StoreRedis  StoreBackend = "redis"
	StoreMemory StoreBackend = "memory"
)

// Config holds the application configuration
type Config struct {
	// Application identity
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`

	// HTTP server configuration
	HTTPPort int    `json:"http_port"`
	HTTPHost string `json:"http_host"`

	// Logging configuration
	LogLevel  LogLevel  `json:"log_level"`
	LogFormat LogFormat `json:"log_format"`

	// Store configuration
	StoreBackend  StoreBackend `json:"store_backend"`
	RedisHost     string       `json:"redis_host"`
	RedisPort     int          `json:"redis_port"`
	RedisPassword string       `json:"-"`
	RedisDB       int          `json:"redis_db"`
}

// Default returns the configuration used when no variables are set
func Default() *Config {
	return &Config{
		AppName:      "Redis Web Application",
		AppVersion:   "1.0.0",
		HTTPPort:     8000,
		HTTPHost:     "0.0.0.0",
		LogLevel:     LogLevelInfo,
		LogFormat:    LogFormatText,
		StoreBackend: StoreRedis,
		RedisHost:    "localhost",
		RedisPort:    6379,
		RedisDB:      0,
	}
}

// Load reads the configuration from environment variables. Variables from
// the file named by ENV_FILE (default .env) are loaded first if the file
// exists; variables already present in the environment take precedence.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat env file %s: %w", envFile, err)
	}

	config := Default()

	if name := os.Getenv("APP_NAME"); name != "" {
		config.AppName = name
	}

	if version := os.Getenv("APP_VERSION"); version != "" {
		config.AppVersion = version
	}

	if err := intFromEnv("HTTP_PORT", &config.HTTPPort); err != nil {
		return nil, err
	}

	if host := os.Getenv("HTTP_HOST"); host != "" {
		config.HTTPHost = host
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		level := LogLevel(strings.ToLower(logLevel))
		if !isValidLogLevel(level) {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %s (must be debug, info, warn, or error)", logLevel)
		}
		config.LogLevel = level
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		format := LogFormat(strings.ToLower(logFormat))
		if !isValidLogFormat(format) {
			return nil, fmt.Errorf("invalid LOG_FORMAT: %s (must be text or json)", logFormat)
		}
		config.LogFormat = format
	}

	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		b := StoreBackend(strings.ToLower(backend))
		if !isValidStoreBackend(b) {
			return nil, fmt.Errorf("invalid STORE_BACKEND: %s (must be redis or memory)", backend)
		}
		config.StoreBackend = b
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.RedisHost = host
	}

	if err := intFromEnv("REDIS_PORT", &config.RedisPort); err != nil {
		return nil, err
	}

	config.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if err := intFromEnv("REDIS_DB", &config.RedisDB); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// intFromEnv parses the named variable into dst when it is set
func intFromEnv(name string, dst *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = v
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", c.HTTPPort)
	}

	if c.HTTPHost == "" {
		return fmt.Errorf("http_host cannot be empty")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if !isValidLogFormat(c.LogFormat) {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}

	if !isValidStoreBackend(c.StoreBackend) {
		return fmt.Errorf("invalid store_backend: %s", c.StoreBackend)
	}

	if c.StoreBackend == StoreRedis {
		if c.RedisHost == "" {
			return fmt.Errorf("redis_host cannot be empty")
		}
		if c.RedisPort < 1 || c.RedisPort > 65535 {
			return fmt.Errorf("redis_port must be between 1 and 65535, got %d", c.RedisPort)
		}
		if c.RedisDB < 0 {
			return fmt.Errorf("redis_db cannot be negative, got %d", c.RedisDB)
		}
	}

	return nil
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

// RedisAddr returns the Redis server address
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

func isValidLogLevel(level LogLevel) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

func isValidLogFormat(format LogFormat) bool {
	return format == LogFormatText || format == LogFormatJSON
}

func isValidStoreBackend(backend StoreBackend) bool {
	return backend == StoreRedis || backend == StoreMemory
}
