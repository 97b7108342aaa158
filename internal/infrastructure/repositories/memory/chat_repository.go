package memory

import (
	"context"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type MemoryChatMessageRepository struct {
	messages map[domain.ChannelID][]*domain.ChatMessage
	mu       sync.RWMutex
}

func NewMemoryChatMessageRepository() ports.ChatMessageRepository {
	return &MemoryChatMessageRepository{
		messages: make(map[domain.ChannelID][]*domain.ChatMessage),
	}
}

func (r *MemoryChatMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *msg
	r.messages[msg.ChannelID] = append(r.messages[msg.ChannelID], &clone)
	return nil
}

func (r *MemoryChatMessageRepository) ListByChannel(ctx context.Context, channelID domain.ChannelID, limit int) ([]*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.messages[channelID]
	start := 0
	if limit > 0 && len(log) > limit {
		start = len(log) - limit
	}

	result := make([]*domain.ChatMessage, 0, len(log)-start)
	for _, msg := range log[start:] {
		clone := *msg
		result = append(result, &clone)
	}
	return result, nil
}

func (r *MemoryChatMessageRepository) LastSeq(ctx context.Context, channelID domain.ChannelID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.messages[channelID]
	if len(log) == 0 {
		return 0, nil
	}
	return log[len(log)-1].Seq, nil
}

func (r *MemoryChatMessageRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, channelID)
	return nil
}
