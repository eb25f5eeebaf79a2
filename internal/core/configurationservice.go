package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jo-hoe/goimagesearch/internal/backend/database"
	"github.com/jo-hoe/goimagesearch/internal/backend/imagesearch"
	"github.com/jo-hoe/goimagesearch/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// ConfigurationService manages the single image search configuration record.
type ConfigurationService struct {
	repository database.ConfigurationRepository
	client     imagesearch.Client
}

func NewConfigurationService(repository database.ConfigurationRepository, client imagesearch.Client) *ConfigurationService {
	return &ConfigurationService{
		repository: repository,
		client:     client,
	}
}

// Save validates and stores the configuration. A blank password keeps the
// stored hash, any other password is stored as a bcrypt hash.
func (service *ConfigurationService) Save(ctx context.Context, configuration *model.Configuration) error {
	if err := service.Validate(configuration); err != nil {
		return err
	}

	toSave := *configuration
	toSave.ID = model.ConfigurationID
	if strings.TrimSpace(toSave.Password) == "" {
		existing, err := service.Load(ctx)
		if err != nil {
			return err
		}
		toSave.Password = ""
		if existing != nil {
			toSave.Password = existing.Password
		}
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(toSave.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("%w: the password cannot be hashed: %v", ErrInvalidConfiguration, err)
		}
		toSave.Password = string(hash)
	}

	if err := service.repository.SaveConfiguration(ctx, &toSave); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	slog.Info("configuration saved", "region_id", toSave.RegionID, "instance_name", toSave.InstanceName,
		"domain", toSave.Domain, "namespace", toSave.Namespace)
	return nil
}

// Load returns the stored configuration, or nil when none was saved yet.
func (service *ConfigurationService) Load(ctx context.Context) (*model.Configuration, error) {
	configuration, err := service.repository.LoadConfiguration(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return configuration, nil
}

// Validate reports the first required attribute that is blank.
func (service *ConfigurationService) Validate(configuration *model.Configuration) error {
	if configuration == nil {
		return fmt.Errorf("%w: the configuration cannot be null", ErrInvalidConfiguration)
	}
	required := []struct {
		name  string
		value string
	}{
		{"accessKeyId", configuration.AccessKeyID},
		{"accessKeySecret", configuration.AccessKeySecret},
		{"domain", configuration.Domain},
		{"instanceName", configuration.InstanceName},
		{"regionId", configuration.RegionID},
	}
	for _, attribute := range required {
		if strings.TrimSpace(attribute.value) == "" {
			return fmt.Errorf("%w: the %s is invalid", ErrInvalidConfiguration, attribute.name)
		}
	}
	return nil
}

// Check validates the configuration and runs a one-result search with it.
// The configuration is not saved.
func (service *ConfigurationService) Check(ctx context.Context, configuration *model.Configuration) error {
	if err := service.Validate(configuration); err != nil {
		return err
	}
	if err := service.client.CheckConfiguration(ctx, configuration); err != nil {
		slog.Warn("configuration check failed", "instance_name", configuration.InstanceName, "error", err)
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}

// required returns the stored configuration, failing with ErrNotConfigured when there is none.
func (service *ConfigurationService) required(ctx context.Context) (*model.Configuration, error) {
	configuration, err := service.Load(ctx)
	if err != nil {
		return nil, err
	}
	if configuration == nil {
		return nil, ErrNotConfigured
	}
	return configuration, nil
}
