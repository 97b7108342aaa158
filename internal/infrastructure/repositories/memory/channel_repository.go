package memory

import (
	"context"
	"sort"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type MemoryChannelRepository struct {
	channels map[domain.ChannelID]*domain.Channel
	mu       sync.RWMutex
}

func NewMemoryChannelRepository() ports.ChannelRepository {
	return &MemoryChannelRepository{
		channels: make(map[domain.ChannelID]*domain.Channel),
	}
}

func (r *MemoryChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.channels {
		if existing.Title == channel.Title {
			return domain.ErrDuplicateTitle
		}
	}

	clone := *channel
	r.channels[channel.ID] = &clone
	return nil
}

func (r *MemoryChannelRepository) GetByID(ctx context.Context, id domain.ChannelID) (*domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, exists := r.channels[id]
	if !exists {
		return nil, domain.ErrChannelNotFound
	}

	clone := *channel
	return &clone, nil
}

func (r *MemoryChannelRepository) GetByTitle(ctx context.Context, title string) (*domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, channel := range r.channels {
		if channel.Title == title {
			clone := *channel
			return &clone, nil
		}
	}

	return nil, domain.ErrChannelNotFound
}

func (r *MemoryChannelRepository) Update(ctx context.Context, channel *domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[channel.ID]; !exists {
		return domain.ErrChannelNotFound
	}

	for id, existing := range r.channels {
		if id != channel.ID && existing.Title == channel.Title {
			return domain.ErrDuplicateTitle
		}
	}

	clone := *channel
	r.channels[channel.ID] = &clone
	return nil
}

func (r *MemoryChannelRepository) Delete(ctx context.Context, id domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[id]; !exists {
		return domain.ErrChannelNotFound
	}

	delete(r.channels, id)
	return nil
}

func (r *MemoryChannelRepository) List(ctx context.Context, offset, limit int) ([]*domain.Channel, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if offset >= len(all) {
		return []*domain.Channel{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (r *MemoryChannelRepository) ListAll(ctx context.Context) ([]*domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]*domain.Channel, 0, len(r.channels))
	for _, channel := range r.channels {
		clone := *channel
		channels = append(channels, &clone)
	}

	// Stable order for pagination.
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].CreatedAt.Equal(channels[j].CreatedAt) {
			return channels[i].ID < channels[j].ID
		}
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})

	return channels, nil
}
