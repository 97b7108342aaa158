package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisMeetingTokenRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisMeetingTokenRepository(client *redis.Client) ports.MeetingTokenRepository {
	return &RedisMeetingTokenRepository{
		client: client,
		prefix: keyPrefix + "meeting_token:",
	}
}

func (r *RedisMeetingTokenRepository) tokenKey(channelID domain.ChannelID) string {
	return r.prefix + string(channelID)
}

func (r *RedisMeetingTokenRepository) Create(ctx context.Context, t *domain.MeetingToken) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal meeting token: %w", err)
	}

	if err := r.client.Set(ctx, r.tokenKey(t.ChannelID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set meeting token in Redis: %w", err)
	}

	return nil
}

func (r *RedisMeetingTokenRepository) GetByChannel(ctx context.Context, channelID domain.ChannelID) (*domain.MeetingToken, error) {
	data, err := r.client.Get(ctx, r.tokenKey(channelID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting token from Redis: %w", err)
	}

	var t domain.MeetingToken
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meeting token: %w", err)
	}

	return &t, nil
}

func (r *RedisMeetingTokenRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	if err := r.client.Del(ctx, r.tokenKey(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to delete meeting token from Redis: %w", err)
	}
	return nil
}
