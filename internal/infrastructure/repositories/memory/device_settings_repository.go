package memory

import (
	"context"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type MemoryDeviceSettingsRepository struct {
	settings map[domain.ChannelID]*domain.DeviceSettings
	mu       sync.RWMutex
}

func NewMemoryDeviceSettingsRepository() ports.DeviceSettingsRepository {
	return &MemoryDeviceSettingsRepository{
		settings: make(map[domain.ChannelID]*domain.DeviceSettings),
	}
}

func (r *MemoryDeviceSettingsRepository) Create(ctx context.Context, s *domain.DeviceSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[s.ChannelID]; exists {
		return domain.ErrDuplicateUser
	}

	clone := *s
	r.settings[s.ChannelID] = &clone
	return nil
}

func (r *MemoryDeviceSettingsRepository) Get(ctx context.Context, channelID domain.ChannelID) (*domain.DeviceSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.settings[channelID]
	if !exists {
		return nil, domain.ErrSettingsNotFound
	}

	clone := *s
	return &clone, nil
}

func (r *MemoryDeviceSettingsRepository) Update(ctx context.Context, s *domain.DeviceSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[s.ChannelID]; !exists {
		return domain.ErrSettingsNotFound
	}

	clone := *s
	r.settings[s.ChannelID] = &clone
	return nil
}

func (r *MemoryDeviceSettingsRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.settings, channelID)
	return nil
}
