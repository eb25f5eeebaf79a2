package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 8080
database:
  type: sqlite
  connectionString: "file:objects.db"
configurationStore:
  type: redis
  address: "localhost:6379"
  db: 2
imageSearch:
  provider: memory
  timeout: 5s
  maxResults: 10
thumbnailWidth: 128
maxRequestBody: 5M`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 8080 {
		t.Errorf("Expected port to be 8080, got %d", config.Port)
	}
	if config.Database.Type != "sqlite" || config.Database.ConnectionString != "file:objects.db" {
		t.Errorf("Unexpected database config: %+v", config.Database)
	}
	if config.ConfigurationStore.Type != "redis" || config.ConfigurationStore.Address != "localhost:6379" || config.ConfigurationStore.DB != 2 {
		t.Errorf("Unexpected configuration store: %+v", config.ConfigurationStore)
	}
	if config.ImageSearch.Provider != "memory" || config.ImageSearch.Timeout != 5*time.Second || config.ImageSearch.MaxResults != 10 {
		t.Errorf("Unexpected image search config: %+v", config.ImageSearch)
	}
	if config.ThumbnailWidth != 128 {
		t.Errorf("Expected thumbnailWidth 128, got %d", config.ThumbnailWidth)
	}
	if config.MaxRequestBody != "5M" {
		t.Errorf("Expected maxRequestBody 5M, got %q", config.MaxRequestBody)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	configPath := writeConfig(t, `port: 8080
database:
  type: sqlite
  connectionString: ":memory:"`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.ThumbnailWidth != defaultThumbnailWidth {
		t.Errorf("Expected default thumbnail width, got %d", config.ThumbnailWidth)
	}
	if config.ImageSearch.Provider != "aliyun" || config.ImageSearch.Timeout != defaultSearchTimeout {
		t.Errorf("Unexpected image search defaults: %+v", config.ImageSearch)
	}
	if config.ConfigurationStore.Type != "database" {
		t.Errorf("Expected database configuration store by default, got %q", config.ConfigurationStore.Type)
	}
	if config.MaxRequestBody != defaultMaxRequestBody {
		t.Errorf("Expected default maxRequestBody, got %q", config.MaxRequestBody)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Missing database type", `port: 8080`},
		{"Port out of range", "port: 70000\ndatabase:\n  type: sqlite"},
		{"Unknown provider", "database:\n  type: sqlite\nimageSearch:\n  provider: bing"},
		{"Redis without address", "database:\n  type: sqlite\nconfigurationStore:\n  type: redis"},
		{"Unknown store", "database:\n  type: sqlite\nconfigurationStore:\n  type: etcd"},
		{"Negative thumbnail width", "database:\n  type: sqlite\nthumbnailWidth: -1"},
		{"Malformed body limit", "database:\n  type: sqlite\nmaxRequestBody: lots"},
		{"Zero body limit", "database:\n  type: sqlite\nmaxRequestBody: 0M"},
		{"Malformed YAML", "port: [1, 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("Expected error, got config %+v", config)
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	// Test with a non-existent file
	nonExistentPath := "/path/that/does/not/exist/config.yaml"

	config, err := LoadConfig(nonExistentPath)
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected config to be nil when file doesn't exist")
	}
}
