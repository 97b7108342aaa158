package memory

import (
	"context"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type MemoryMeetingTokenRepository struct {
	tokens map[domain.ChannelID]*domain.MeetingToken
	mu     sync.RWMutex
}

func NewMemoryMeetingTokenRepository() ports.MeetingTokenRepository {
	return &MemoryMeetingTokenRepository{
		tokens: make(map[domain.ChannelID]*domain.MeetingToken),
	}
}

func (r *MemoryMeetingTokenRepository) Create(ctx context.Context, t *domain.MeetingToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *t
	r.tokens[t.ChannelID] = &clone
	return nil
}

func (r *MemoryMeetingTokenRepository) GetByChannel(ctx context.Context, channelID domain.ChannelID) (*domain.MeetingToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tokens[channelID]
	if !exists {
		return nil, domain.ErrTokenNotFound
	}

	clone := *t
	return &clone, nil
}

func (r *MemoryMeetingTokenRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, channelID)
	return nil
}
