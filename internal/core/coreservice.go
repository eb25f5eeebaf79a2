package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jo-hoe/goimagesearch/internal/backend/database"
	"github.com/jo-hoe/goimagesearch/internal/backend/imageprocessing"
	"github.com/jo-hoe/goimagesearch/internal/backend/imagesearch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CoreService wires the repositories, the image search client and the services on top of them.
type CoreService struct {
	config                  *ServiceConfig
	databaseService         database.DatabaseService
	configurationRepository database.ConfigurationRepository
	imageSearchClient       imagesearch.Client

	Configurations *ConfigurationService
	Objects        *ObjectService
}

// NewCoreService builds the services from the configuration. Client metrics
// are registered with registerer when it is not nil.
func NewCoreService(config *ServiceConfig, registerer prometheus.Registerer) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		slog.Error("failed to initialize database service", "error", err)
		return nil, err
	}

	configurationRepository, err := getConfigurationRepository(config, databaseService)
	if err != nil {
		_ = databaseService.Close()
		return nil, err
	}

	client, err := imagesearch.NewClient(config.ImageSearch.Provider,
		imagesearch.WithTimeout(config.ImageSearch.Timeout),
		imagesearch.WithMaxResults(config.ImageSearch.MaxResults),
		imagesearch.WithRegisterer(registerer),
	)
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize image search client: %w", err)
	}
	slog.Info("image search client initialized", "provider", config.ImageSearch.Provider)

	return newCoreService(config, databaseService, configurationRepository, client)
}

func newCoreService(config *ServiceConfig, databaseService database.DatabaseService,
	configurationRepository database.ConfigurationRepository, client imagesearch.Client) (*CoreService, error) {
	thumbnail, err := imageprocessing.NewThumbnailCommand(config.ThumbnailWidth)
	if err != nil {
		return nil, fmt.Errorf("invalid thumbnail width: %w", err)
	}

	configurations := NewConfigurationService(configurationRepository, client)
	return &CoreService{
		config:                  config,
		databaseService:         databaseService,
		configurationRepository: configurationRepository,
		imageSearchClient:       client,
		Configurations:          configurations,
		Objects:                 NewObjectService(databaseService, configurations, client, thumbnail),
	}, nil
}

// DatabaseAvailable reports whether the object database can be reached.
func (service *CoreService) DatabaseAvailable() bool {
	return service.databaseService != nil && service.databaseService.DoesDatabaseExist()
}

// Close releases the database and, when separate, the configuration store.
func (service *CoreService) Close() error {
	var errs []error
	if closer, ok := service.configurationRepository.(io.Closer); ok && closer != io.Closer(service.databaseService) {
		errs = append(errs, closer.Close())
	}
	if service.databaseService != nil {
		errs = append(errs, service.databaseService.Close())
	}
	return errors.Join(errs...)
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

func getConfigurationRepository(config *ServiceConfig, databaseService database.DatabaseService) (database.ConfigurationRepository, error) {
	store := config.ConfigurationStore
	var redisOptions *redis.Options
	if store.Type == "redis" {
		redisOptions = &redis.Options{
			Addr:     store.Address,
			Password: store.Password,
			DB:       store.DB,
		}
	}

	repository, err := database.NewConfigurationRepository(store.Type, databaseService, redisOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configuration store: %w", err)
	}
	slog.Info("configuration store initialized", "type", store.Type)
	return repository, nil
}
