package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "marquee"
	configFileName = "config.yaml"
)

// Config holds all configuration for the client
type Config struct {
	// Backend API Configuration
	API APIConfig `yaml:"api"`

	// Session storage Configuration
	Storage StorageConfig `yaml:"storage"`

	// Local web UI Configuration
	Web WebConfig `yaml:"web"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
	LogoutTimeout time.Duration `yaml:"logout_timeout" validate:"gte=0"` // budget for the best-effort logout call
}

// StorageConfig selects where the session is persisted
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=file keyring sqlite memory"`
	Path    string `yaml:"path"`
}

// WebConfig holds local web UI settings
type WebConfig struct {
	Addr         string   `yaml:"addr" validate:"required,hostname_port"`
	AllowOrigins []string `yaml:"allow_origins" validate:"dive,url"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error fatal panic"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"` // json, console
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000",
			Timeout:       30 * time.Second,
			LogoutTimeout: 3 * time.Second,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Web: WebConfig{
			Addr:         "127.0.0.1:5173",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// GetConfigPath returns ~/.config/marquee/config.yaml
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// Load builds the configuration from defaults, the user config file, .env files
// and environment variables, in increasing order of precedence
func Load() (*Config, error) {
	path := os.Getenv("MARQUEE_CONFIG")
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit config file path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cfg against its struct tags
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MARQUEE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("MARQUEE_API_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MARQUEE_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("MARQUEE_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("MARQUEE_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("MARQUEE_WEB_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// parseDuration accepts Go durations ("15s") and bare seconds ("15")
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
