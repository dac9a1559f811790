package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig   `yaml:"server"`
	Auth           AuthConfig     `yaml:"auth"`
	Database       DatabaseConfig `yaml:"database"`
	Log            LogConfig      `yaml:"log"`
	SeedSampleData bool           `yaml:"seed_sample_data"`
}

// ServerConfig sets the listen address. AllowedOrigin is the one browser
// origin granted CORS access; empty grants none.
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// AuthConfig holds the key every /api/v1 request must carry in X-API-Key.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig locates the SQLite file. Version 0 means the newest schema
// this build knows.
type DatabaseConfig struct {
	Dir     string `yaml:"dir"`
	Name    string `yaml:"name"`
	Version uint   `yaml:"version"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Path returns the database file path.
func (d DatabaseConfig) Path() string {
	return filepath.Join(d.Dir, d.Name+".db")
}

// SchemaVersion returns the configured schema version, or latest when none
// is pinned.
func (d DatabaseConfig) SchemaVersion(latest uint) uint {
	if d.Version == 0 {
		return latest
	}
	return d.Version
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITTRACK_ and underscore-separated paths:
//
//	FITTRACK_SERVER_HOST, FITTRACK_SERVER_PORT, FITTRACK_SERVER_ALLOWED_ORIGIN,
//	FITTRACK_AUTH_API_KEY,
//	FITTRACK_DB_DIR, FITTRACK_DB_NAME, FITTRACK_DB_VERSION,
//	FITTRACK_LOG_LEVEL, FITTRACK_SEED_SAMPLE_DATA
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if cfg.Auth.APIKey == "" {
		return nil, fmt.Errorf("config validation: auth.api_key is required")
	}

	return cfg, nil
}

// Default returns the settings used for anything the file leaves out.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: DatabaseConfig{Dir: "data", Name: "fittrack"},
		Log:      LogConfig{Level: "info"},
	}
}

// FromEnv builds a config from defaults and environment variables only, for
// tools that run without a config file. Those tools never serve HTTP, so no
// API key is required.
func FromEnv() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FITTRACK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FITTRACK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FITTRACK_SERVER_ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := os.Getenv("FITTRACK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FITTRACK_DB_DIR"); v != "" {
		cfg.Database.Dir = v
	}
	if v := os.Getenv("FITTRACK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FITTRACK_DB_VERSION"); v != "" {
		if version, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Database.Version = uint(version)
		}
	}
	if v := os.Getenv("FITTRACK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FITTRACK_SEED_SAMPLE_DATA"); v != "" {
		if seed, err := strconv.ParseBool(v); err == nil {
			cfg.SeedSampleData = seed
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Dir == "" {
		return fmt.Errorf("database.dir is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
