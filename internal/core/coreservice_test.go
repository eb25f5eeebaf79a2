package core

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

func newMemoryServiceConfig() *ServiceConfig {
	cfg := &ServiceConfig{
		Database: Database{
			Type:             "sqlite",
			ConnectionString: ":memory:",
		},
		ImageSearch: ImageSearch{Provider: "memory"},
	}
	cfg.applyDefaults()
	return cfg
}

func TestNewCoreService_MemoryProvider(t *testing.T) {
	svc, err := NewCoreService(newMemoryServiceConfig(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Close error: %v", err)
		}
	}()

	ctx := context.Background()
	if err := svc.Configurations.Save(ctx, testConfiguration()); err != nil {
		t.Fatalf("Save configuration error: %v", err)
	}

	id := uuid.NewString()
	if _, err := svc.Objects.Create(ctx, newTestObject(t, id)); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	result, err := svc.Objects.FindAllBySimilarImage(ctx, createTestPNG(t, 20, 20), nil)
	if err != nil {
		t.Fatalf("FindAllBySimilarImage error: %v", err)
	}
	if len(result.Auctions) != 1 || result.Auctions[0].ItemID != id {
		t.Fatalf("expected the registered object as only hit, got %+v", result.Auctions)
	}
	if result.ObjectRegion == nil || result.ObjectRegion.Width != 20 {
		t.Errorf("expected the full image region, got %+v", result.ObjectRegion)
	}

	deleted, err := svc.Objects.Delete(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}
	result, err = svc.Objects.FindAllBySimilarImage(ctx, createTestPNG(t, 20, 20), nil)
	if err != nil {
		t.Fatalf("FindAllBySimilarImage error: %v", err)
	}
	if len(result.Auctions) != 0 {
		t.Errorf("expected deleted object to be unregistered, got %d hits", len(result.Auctions))
	}
}

func TestNewCoreService_RedisConfigurationStore(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := newMemoryServiceConfig()
	cfg.ConfigurationStore = ConfigurationStore{Type: "redis", Address: server.Addr()}

	svc, err := NewCoreService(cfg, nil)
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	ctx := context.Background()
	if err := svc.Configurations.Save(ctx, testConfiguration()); err != nil {
		t.Fatalf("Save configuration error: %v", err)
	}
	stored, err := svc.Configurations.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if stored == nil || stored.InstanceName != "instance" {
		t.Fatalf("expected configuration from redis, got %+v", stored)
	}
	if len(server.Keys()) != 1 {
		t.Errorf("expected one redis key, got %v", server.Keys())
	}
}

func TestNewCoreService_UnsupportedDatabase(t *testing.T) {
	cfg := newMemoryServiceConfig()
	cfg.Database.Type = "oracle"

	if _, err := NewCoreService(cfg, nil); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestCoreService_DatabaseAvailable(t *testing.T) {
	svc, err := NewCoreService(newMemoryServiceConfig(), nil)
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	if !svc.DatabaseAvailable() {
		t.Fatalf("expected an open database to be available")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if svc.DatabaseAvailable() {
		t.Errorf("expected a closed database to be unavailable")
	}
}
