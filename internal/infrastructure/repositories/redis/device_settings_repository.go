package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisDeviceSettingsRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisDeviceSettingsRepository(client *redis.Client) ports.DeviceSettingsRepository {
	return &RedisDeviceSettingsRepository{
		client: client,
		prefix: keyPrefix + "device_settings:",
	}
}

func (r *RedisDeviceSettingsRepository) settingsKey(channelID domain.ChannelID) string {
	return r.prefix + string(channelID)
}

func (r *RedisDeviceSettingsRepository) Create(ctx context.Context, s *domain.DeviceSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal device settings: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.settingsKey(s.ChannelID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set device settings in Redis: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateUser
	}

	return nil
}

func (r *RedisDeviceSettingsRepository) Get(ctx context.Context, channelID domain.ChannelID) (*domain.DeviceSettings, error) {
	data, err := r.client.Get(ctx, r.settingsKey(channelID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device settings from Redis: %w", err)
	}

	var s domain.DeviceSettings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device settings: %w", err)
	}

	return &s, nil
}

func (r *RedisDeviceSettingsRepository) Update(ctx context.Context, s *domain.DeviceSettings) error {
	if _, err := r.Get(ctx, s.ChannelID); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal device settings: %w", err)
	}
	if err := r.client.Set(ctx, r.settingsKey(s.ChannelID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update device settings in Redis: %w", err)
	}

	return nil
}

func (r *RedisDeviceSettingsRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	if err := r.client.Del(ctx, r.settingsKey(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to delete device settings from Redis: %w", err)
	}
	return nil
}
