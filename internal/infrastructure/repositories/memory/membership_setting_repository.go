package memory

import (
	"context"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type MemoryMembershipSettingRepository struct {
	settings map[membershipKey]*domain.MembershipSetting
	mu       sync.RWMutex
}

func NewMemoryMembershipSettingRepository() ports.MembershipSettingRepository {
	return &MemoryMembershipSettingRepository{
		settings: make(map[membershipKey]*domain.MembershipSetting),
	}
}

func (r *MemoryMembershipSettingRepository) Create(ctx context.Context, s *domain.MembershipSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{s.UserID, s.ChannelID}
	if _, exists := r.settings[key]; exists {
		return domain.ErrDuplicateUser
	}

	clone := *s
	r.settings[key] = &clone
	return nil
}

func (r *MemoryMembershipSettingRepository) Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.MembershipSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.settings[membershipKey{userID, channelID}]
	if !exists {
		return nil, domain.ErrSettingsNotFound
	}

	clone := *s
	return &clone, nil
}

func (r *MemoryMembershipSettingRepository) Update(ctx context.Context, s *domain.MembershipSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{s.UserID, s.ChannelID}
	if _, exists := r.settings[key]; !exists {
		return domain.ErrSettingsNotFound
	}

	clone := *s
	r.settings[key] = &clone
	return nil
}

func (r *MemoryMembershipSettingRepository) Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{userID, channelID}
	if _, exists := r.settings[key]; !exists {
		return domain.ErrSettingsNotFound
	}

	delete(r.settings, key)
	return nil
}

func (r *MemoryMembershipSettingRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.settings {
		if key.channelID == channelID {
			delete(r.settings, key)
		}
	}
	return nil
}
