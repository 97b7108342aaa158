package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisChatMessageRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisChatMessageRepository(client *redis.Client) ports.ChatMessageRepository {
	return &RedisChatMessageRepository{
		client: client,
		prefix: keyPrefix + "chat:",
	}
}

func (r *RedisChatMessageRepository) logKey(channelID domain.ChannelID) string {
	return r.prefix + string(channelID)
}

func (r *RedisChatMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	if err := r.client.RPush(ctx, r.logKey(msg.ChannelID), data).Err(); err != nil {
		return fmt.Errorf("failed to append chat message in Redis: %w", err)
	}

	return nil
}

func (r *RedisChatMessageRepository) ListByChannel(ctx context.Context, channelID domain.ChannelID, limit int) ([]*domain.ChatMessage, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	entries, err := r.client.LRange(ctx, r.logKey(channelID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages from Redis: %w", err)
	}

	result := make([]*domain.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		result = append(result, &msg)
	}

	return result, nil
}

func (r *RedisChatMessageRepository) LastSeq(ctx context.Context, channelID domain.ChannelID) (int64, error) {
	entries, err := r.client.LRange(ctx, r.logKey(channelID), -1, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read chat log tail from Redis: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var msg domain.ChatMessage
	if err := json.Unmarshal([]byte(entries[0]), &msg); err != nil {
		return 0, fmt.Errorf("failed to unmarshal chat message: %w", err)
	}

	return msg.Seq, nil
}

func (r *RedisChatMessageRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	if err := r.client.Del(ctx, r.logKey(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to delete chat log from Redis: %w", err)
	}
	return nil
}
