package core

import (
	"fmt"
	"os"
	"time"

	"github.com/labstack/gommon/bytes"
	"gopkg.in/yaml.v3"
)

const (
	defaultThumbnailWidth = 256
	defaultSearchTimeout  = 30 * time.Second
	defaultMaxRequestBody = "20M"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

// ConfigurationStore selects where the image search credentials are kept.
type ConfigurationStore struct {
	Type     string `yaml:"type"` // "database" (default) or "redis"
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ImageSearch struct {
	Provider   string        `yaml:"provider"` // "aliyun" (default) or "memory"
	Timeout    time.Duration `yaml:"timeout"`
	MaxResults int           `yaml:"maxResults"`
}

type ServiceConfig struct {
	Port               int                `yaml:"port"`
	Database           Database           `yaml:"database"`
	ConfigurationStore ConfigurationStore `yaml:"configurationStore"`
	ImageSearch        ImageSearch        `yaml:"imageSearch"`
	ThumbnailWidth     int                `yaml:"thumbnailWidth"`
	// MaxRequestBody caps the size of a request body, e.g. "20M".
	MaxRequestBody string `yaml:"maxRequestBody"`
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML
	var config ServiceConfig
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return &config, nil
}

func (config *ServiceConfig) applyDefaults() {
	if config.ThumbnailWidth == 0 {
		config.ThumbnailWidth = defaultThumbnailWidth
	}
	if config.ImageSearch.Timeout == 0 {
		config.ImageSearch.Timeout = defaultSearchTimeout
	}
	if config.ImageSearch.Provider == "" {
		config.ImageSearch.Provider = "aliyun"
	}
	if config.ConfigurationStore.Type == "" {
		config.ConfigurationStore.Type = "database"
	}
	if config.MaxRequestBody == "" {
		config.MaxRequestBody = defaultMaxRequestBody
	}
}

// validate ensures the values the services depend on are usable
func (config *ServiceConfig) validate() error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port out of range: %d", config.Port)
	}
	if config.Database.Type == "" {
		return fmt.Errorf("database type is required")
	}
	if config.ThumbnailWidth < 0 {
		return fmt.Errorf("thumbnailWidth must be positive, got %d", config.ThumbnailWidth)
	}
	if limit, err := bytes.Parse(config.MaxRequestBody); err != nil || limit <= 0 {
		return fmt.Errorf("maxRequestBody must be a positive size like 20M, got %q", config.MaxRequestBody)
	}
	if config.ImageSearch.MaxResults < 0 {
		return fmt.Errorf("imageSearch.maxResults must not be negative, got %d", config.ImageSearch.MaxResults)
	}

	switch config.ImageSearch.Provider {
	case "aliyun", "memory":
	default:
		return fmt.Errorf("unsupported image search provider: %s", config.ImageSearch.Provider)
	}

	switch config.ConfigurationStore.Type {
	case "database":
	case "redis":
		if config.ConfigurationStore.Address == "" {
			return fmt.Errorf("configurationStore.address is required for the redis store")
		}
	default:
		return fmt.Errorf("unsupported configuration store: %s", config.ConfigurationStore.Type)
	}

	return nil
}
