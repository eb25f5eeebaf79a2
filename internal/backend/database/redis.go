package database

import (
	"context"
	"fmt"

	"github.com/jo-hoe/goimagesearch/internal/model"
	"github.com/redis/go-redis/v9"
)

const configurationKeyPrefix = "goimagesearch:configuration:"

// RedisConfigurationStore keeps the configuration record in a redis hash.
type RedisConfigurationStore struct {
	client *redis.Client
}

func NewRedisConfigurationStore(client *redis.Client) *RedisConfigurationStore {
	return &RedisConfigurationStore{client: client}
}

func (s *RedisConfigurationStore) key() string {
	return configurationKeyPrefix + model.ConfigurationID
}

func (s *RedisConfigurationStore) SaveConfiguration(ctx context.Context, configuration *model.Configuration) error {
	err := s.client.HSet(ctx, s.key(), map[string]any{
		"password":          configuration.Password,
		"access_key_id":     configuration.AccessKeyID,
		"access_key_secret": configuration.AccessKeySecret,
		"region_id":         configuration.RegionID,
		"instance_name":     configuration.InstanceName,
		"domain":            configuration.Domain,
		"namespace":         configuration.Namespace,
		"base_url":          configuration.BaseURL,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to save configuration to redis: %w", err)
	}
	return nil
}

func (s *RedisConfigurationStore) LoadConfiguration(ctx context.Context) (*model.Configuration, error) {
	values, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from redis: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	return &model.Configuration{
		ID:              model.ConfigurationID,
		Password:        values["password"],
		AccessKeyID:     values["access_key_id"],
		AccessKeySecret: values["access_key_secret"],
		RegionID:        values["region_id"],
		InstanceName:    values["instance_name"],
		Domain:          values["domain"],
		Namespace:       values["namespace"],
		BaseURL:         values["base_url"],
	}, nil
}

func (s *RedisConfigurationStore) Close() error {
	return s.client.Close()
}
