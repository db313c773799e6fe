package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"football-app-go/logging"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Auth     AuthConfig     `json:"auth"`
	App      AppConfig      `json:"app"`
	Events   EventsConfig   `json:"events"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string        `json:"port"`
	Host           string        `json:"host"`
	Environment    string        `json:"environment"`
	AllowedOrigins []string      `json:"allowed_origins"`
	ReadTimeout    time.Duration `json:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout"`
	BehindProxy    bool          `json:"behind_proxy"`
}

// DatabaseConfig holds MongoDB configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   string        `json:"-"`
	TokenExpiry time.Duration `json:"token_expiry"`
}

// AppConfig holds prediction-game settings
type AppConfig struct {
	IsDevelopment     bool   `json:"is_development"`
	JoinCodeAttempts  int    `json:"join_code_attempts"`
	WatchMatchChanges bool   `json:"watch_match_changes"`
	SeedFile          string `json:"seed_file"`
}

// EventsConfig holds the NATS publisher configuration
type EventsConfig struct {
	Enabled       bool   `json:"enabled"`
	NATSURL       string `json:"nats_url"`
	SubjectPrefix string `json:"subject_prefix"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Warnf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:    environment,
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			BehindProxy:    getBoolEnv("BEHIND_PROXY", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "football_app"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", ""),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
			TokenExpiry: getDurationEnv("JWT_EXPIRY", 30*24*time.Hour),
		},
		App: AppConfig{
			IsDevelopment:     isDevelopment,
			JoinCodeAttempts:  getIntEnv("JOIN_CODE_ATTEMPTS", 5),
			WatchMatchChanges: getBoolEnv("WATCH_MATCH_CHANGES", true),
			SeedFile:          getEnv("SEED_FILE", ""),
		},
		Events: EventsConfig{
			Enabled:       getBoolEnv("EVENTS_ENABLED", false),
			NATSURL:       getEnv("NATS_URL", "nats://127.0.0.1:4222"),
			SubjectPrefix: getEnv("EVENTS_SUBJECT_PREFIX", "football"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Host == "" || c.Database.Port == "" {
		return fmt.Errorf("database host and port are required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == defaultJWTSecret && !c.App.IsDevelopment {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if c.App.JoinCodeAttempts < 1 {
		return fmt.Errorf("join code attempts must be at least 1, got: %d", c.App.JoinCodeAttempts)
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_ENABLED=true")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/', got: %q", c.Metrics.Path)
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GetMongoURI returns the MongoDB connection URI
func (c *Config) GetMongoURI() string {
	if c.Database.Username != "" && c.Database.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			c.Database.Username, c.Database.Password,
			c.Database.Host, c.Database.Port,
			c.Database.Database, c.Database.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s",
		c.Database.Host, c.Database.Port, c.Database.Database)
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logger := logging.WithPrefix("Config")
	logger.Infof("Server: %s (Environment: %s, CORS: %v)",
		c.GetServerAddress(), c.Server.Environment, c.Server.AllowedOrigins)
	logger.Infof("Database: %s:%s/%s (Auth: %t)",
		c.Database.Host, c.Database.Port, c.Database.Database, c.Database.Password != "")
	logger.Infof("Logging: Level=%s, Color=%t", c.Logging.Level, c.Logging.EnableColor)
	logger.Infof("App: Development=%t, WatchMatches=%t, JoinCodeAttempts=%d",
		c.App.IsDevelopment, c.App.WatchMatchChanges, c.App.JoinCodeAttempts)
	logger.Infof("Events: Enabled=%t, NATS=%s", c.Events.Enabled, c.Events.NATSURL)
	logger.Infof("Metrics: Enabled=%t, Path=%s", c.Metrics.Enabled, c.Metrics.Path)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
