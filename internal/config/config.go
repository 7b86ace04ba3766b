package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Environment: development or production
	Env string

	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis view counter configuration
	Redis RedisConfig

	// Blog behaviour
	Blog BlogConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver         string // postgres or memory
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RedisConfig holds the optional view counter settings. An empty Addr
// disables the counter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BlogConfig holds publishing settings
type BlogConfig struct {
	AdminToken        string
	AdminPathPrefix   string
	HomePageSize      int
	CommentRateLimit  int // comments per minute per client, 0 disables
	CommentRateBurst  int
	ViewRecordTimeout time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("STORE_DRIVER", "postgres"),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "blog"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Blog: BlogConfig{
			AdminToken:        getEnv("ADMIN_TOKEN", ""),
			AdminPathPrefix:   getEnv("ADMIN_PATH_PREFIX", "/admin"),
			HomePageSize:      getIntEnv("HOME_PAGE_SIZE", 10),
			CommentRateLimit:  getIntEnv("COMMENT_RATE_LIMIT", 10),
			CommentRateBurst:  getIntEnv("COMMENT_RATE_BURST", 5),
			ViewRecordTimeout: getDurationEnv("VIEW_RECORD_TIMEOUT", 2*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			problems = append(problems, "DB_HOST is required")
		}
		if c.Database.Name == "" {
			problems = append(problems, "DB_NAME is required")
		}
	case "memory":
	default:
		problems = append(problems, "STORE_DRIVER must be one of: postgres, memory")
	}

	if c.Blog.AdminToken == "" && !c.IsDevelopment() {
		problems = append(problems, "ADMIN_TOKEN is required outside development")
	}
	if !strings.HasPrefix(c.Blog.AdminPathPrefix, "/") || strings.TrimRight(c.Blog.AdminPathPrefix, "/") == "" {
		problems = append(problems, "ADMIN_PATH_PREFIX must be a path below /")
	}
	if c.Blog.HomePageSize < 1 {
		problems = append(problems, "HOME_PAGE_SIZE must be positive")
	}
	if c.Blog.CommentRateLimit < 0 || c.Blog.CommentRateBurst < 0 {
		problems = append(problems, "COMMENT_RATE_LIMIT and COMMENT_RATE_BURST must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment returns true when running with ENV=development
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
