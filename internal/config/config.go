package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server process configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Menu     MenuConfig
	Assets   AssetsConfig
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds the ledger database connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// MenuConfig points at the static menu document served to every kiosk.
type MenuConfig struct {
	Path string
}

// AssetsConfig holds the directory the asset route serves image bytes from.
type AssetsConfig struct {
	Dir string
}

// KioskConfig holds all kiosk (client) process configuration.
type KioskConfig struct {
	ServerHost string
	ServerPort int
	Logger     LoggerConfig
	AssetDir   string
	ResetDelay time.Duration
	S3         S3Config
}

// S3Config holds the optional S3 asset source settings.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // key prefix within the bucket (e.g. "assets/")
}

// Load loads server configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8000),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "kiosk"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Menu: MenuConfig{
			Path: getEnv("MENU_CONFIG_PATH", "data/config.json"),
		},
		Assets: AssetsConfig{
			Dir: getEnv("ASSET_DIR", "assets"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadKiosk loads kiosk configuration from environment variables.
func LoadKiosk() (*KioskConfig, error) {
	cfg := &KioskConfig{
		ServerHost: getEnv("KIOSK_SERVER_HOST", "localhost"),
		ServerPort: getEnvAsInt("KIOSK_SERVER_PORT", 8000),
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		AssetDir:   getEnv("KIOSK_ASSET_DIR", "assets"),
		ResetDelay: time.Duration(getEnvAsInt("KIOSK_RESET_DELAY_SECONDS", 5)) * time.Second,
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "assets/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Menu.Path == "" {
		return fmt.Errorf("menu config path is required")
	}

	if c.Assets.Dir == "" {
		return fmt.Errorf("asset directory is required")
	}

	return c.Logger.validate()
}

// Validate validates the kiosk configuration.
func (c *KioskConfig) Validate() error {
	if c.ServerHost == "" {
		return fmt.Errorf("server host is required")
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.ServerPort)
	}

	if c.AssetDir == "" {
		return fmt.Errorf("asset directory is required")
	}

	if c.ResetDelay <= 0 {
		return fmt.Errorf("reset delay must be positive")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return c.Logger.validate()
}

func (c *LoggerConfig) validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}

	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerURL returns the websocket endpoint the kiosk dials.
func (c *KioskConfig) ServerURL() string {
	return fmt.Sprintf("ws://%s:%d/kiosk", c.ServerHost, c.ServerPort)
}

// AssetBaseURL returns the HTTP base URL the asset prefetcher fetches from.
func (c *KioskConfig) AssetBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.ServerHost, c.ServerPort)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
