package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisChannelRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisChannelRepository(client *redis.Client) ports.ChannelRepository {
	return &RedisChannelRepository{
		client: client,
		prefix: keyPrefix + "channel:",
	}
}

func (r *RedisChannelRepository) channelKey(id domain.ChannelID) string {
	return r.prefix + string(id)
}

func (r *RedisChannelRepository) titleKey(title string) string {
	return keyPrefix + "channel_title:" + title
}

func (r *RedisChannelRepository) allKey() string {
	return r.prefix + "all"
}

func (r *RedisChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	data, err := json.Marshal(channel)
	if err != nil {
		return fmt.Errorf("failed to marshal channel: %w", err)
	}

	// Title index doubles as the uniqueness guard.
	ok, err := r.client.SetNX(ctx, r.titleKey(channel.Title), string(channel.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve channel title: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateTitle
	}

	if err := r.client.Set(ctx, r.channelKey(channel.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set channel in Redis: %w", err)
	}
	if err := r.client.SAdd(ctx, r.allKey(), string(channel.ID)).Err(); err != nil {
		return fmt.Errorf("failed to add channel to index: %w", err)
	}

	return nil
}

func (r *RedisChannelRepository) GetByID(ctx context.Context, id domain.ChannelID) (*domain.Channel, error) {
	data, err := r.client.Get(ctx, r.channelKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel from Redis: %w", err)
	}

	var channel domain.Channel
	if err := json.Unmarshal([]byte(data), &channel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel: %w", err)
	}

	return &channel, nil
}

func (r *RedisChannelRepository) GetByTitle(ctx context.Context, title string) (*domain.Channel, error) {
	id, err := r.client.Get(ctx, r.titleKey(title)).Result()
	if err == redis.Nil {
		return nil, domain.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel title: %w", err)
	}

	return r.GetByID(ctx, domain.ChannelID(id))
}

func (r *RedisChannelRepository) Update(ctx context.Context, channel *domain.Channel) error {
	current, err := r.GetByID(ctx, channel.ID)
	if err != nil {
		return err
	}

	if current.Title != channel.Title {
		ok, err := r.client.SetNX(ctx, r.titleKey(channel.Title), string(channel.ID), 0).Result()
		if err != nil {
			return fmt.Errorf("failed to reserve channel title: %w", err)
		}
		if !ok {
			return domain.ErrDuplicateTitle
		}
		if err := r.client.Del(ctx, r.titleKey(current.Title)).Err(); err != nil {
			return fmt.Errorf("failed to drop old title index: %w", err)
		}
	}

	data, err := json.Marshal(channel)
	if err != nil {
		return fmt.Errorf("failed to marshal channel: %w", err)
	}
	if err := r.client.Set(ctx, r.channelKey(channel.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update channel in Redis: %w", err)
	}

	return nil
}

func (r *RedisChannelRepository) Delete(ctx context.Context, id domain.ChannelID) error {
	channel, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, r.titleKey(channel.Title)).Err(); err != nil {
		return fmt.Errorf("failed to drop title index: %w", err)
	}
	if err := r.client.SRem(ctx, r.allKey(), string(id)).Err(); err != nil {
		return fmt.Errorf("failed to remove channel from index: %w", err)
	}
	if err := r.client.Del(ctx, r.channelKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete channel from Redis: %w", err)
	}

	return nil
}

func (r *RedisChannelRepository) List(ctx context.Context, offset, limit int) ([]*domain.Channel, error) {
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

func (r *RedisChannelRepository) ListAll(ctx context.Context) ([]*domain.Channel, error) {
	ids, err := r.client.SMembers(ctx, r.allKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channel index: %w", err)
	}

	channels := make([]*domain.Channel, 0, len(ids))
	for _, id := range ids {
		channel, err := r.GetByID(ctx, domain.ChannelID(id))
		if err == domain.ErrChannelNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	sort.Slice(channels, func(i, j int) bool {
		if channels[i].CreatedAt.Equal(channels[j].CreatedAt) {
			return channels[i].ID < channels[j].ID
		}
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})

	return channels, nil
}
