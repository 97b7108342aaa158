package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisMembershipRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisMembershipRepository(client *redis.Client) ports.MembershipRepository {
	return &RedisMembershipRepository{
		client: client,
		prefix: keyPrefix + "membership:",
	}
}

func (r *RedisMembershipRepository) memberKey(userID domain.UserID, channelID domain.ChannelID) string {
	return r.prefix + string(channelID) + ":" + string(userID)
}

func (r *RedisMembershipRepository) channelIndexKey(channelID domain.ChannelID) string {
	return r.prefix + "by_channel:" + string(channelID)
}

func (r *RedisMembershipRepository) userIndexKey(userID domain.UserID) string {
	return r.prefix + "by_user:" + string(userID)
}

func (r *RedisMembershipRepository) ownerKey(channelID domain.ChannelID) string {
	return keyPrefix + "owner:" + string(channelID)
}

func (r *RedisMembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	if m.Role == domain.RoleOwner {
		// The owner key is the single-owner guard for the channel.
		ok, err := r.client.SetNX(ctx, r.ownerKey(m.ChannelID), string(m.UserID), 0).Result()
		if err != nil {
			return fmt.Errorf("failed to reserve channel owner: %w", err)
		}
		if !ok {
			return domain.ErrDuplicateOwner
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal membership: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.memberKey(m.UserID, m.ChannelID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set membership in Redis: %w", err)
	}
	if !ok {
		if m.Role == domain.RoleOwner {
			r.client.Del(ctx, r.ownerKey(m.ChannelID))
		}
		return domain.ErrDuplicateUser
	}

	if err := r.client.SAdd(ctx, r.channelIndexKey(m.ChannelID), string(m.UserID)).Err(); err != nil {
		return fmt.Errorf("failed to index membership by channel: %w", err)
	}
	if err := r.client.SAdd(ctx, r.userIndexKey(m.UserID), string(m.ChannelID)).Err(); err != nil {
		return fmt.Errorf("failed to index membership by user: %w", err)
	}

	return nil
}

func (r *RedisMembershipRepository) Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.Membership, error) {
	data, err := r.client.Get(ctx, r.memberKey(userID, channelID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership from Redis: %w", err)
	}

	var m domain.Membership
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership: %w", err)
	}

	return &m, nil
}

func (r *RedisMembershipRepository) Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	m, err := r.Get(ctx, userID, channelID)
	if err != nil {
		return err
	}

	if m.Role == domain.RoleOwner {
		if err := r.client.Del(ctx, r.ownerKey(channelID)).Err(); err != nil {
			return fmt.Errorf("failed to release channel owner: %w", err)
		}
	}
	if err := r.client.SRem(ctx, r.channelIndexKey(channelID), string(userID)).Err(); err != nil {
		return fmt.Errorf("failed to deindex membership by channel: %w", err)
	}
	if err := r.client.SRem(ctx, r.userIndexKey(userID), string(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to deindex membership by user: %w", err)
	}
	if err := r.client.Del(ctx, r.memberKey(userID, channelID)).Err(); err != nil {
		return fmt.Errorf("failed to delete membership from Redis: %w", err)
	}

	return nil
}

func (r *RedisMembershipRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	userIDs, err := r.client.SMembers(ctx, r.channelIndexKey(channelID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list channel members: %w", err)
	}

	for _, userID := range userIDs {
		if err := r.Delete(ctx, domain.UserID(userID), channelID); err != nil && err != domain.ErrMembershipNotFound {
			return err
		}
	}

	if err := r.client.Del(ctx, r.channelIndexKey(channelID), r.ownerKey(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to drop channel membership index: %w", err)
	}

	return nil
}

func (r *RedisMembershipRepository) FindByChannel(ctx context.Context, channelID domain.ChannelID) ([]*domain.Membership, error) {
	userIDs, err := r.client.SMembers(ctx, r.channelIndexKey(channelID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channel members: %w", err)
	}

	var result []*domain.Membership
	for _, userID := range userIDs {
		m, err := r.Get(ctx, domain.UserID(userID), channelID)
		if err == domain.ErrMembershipNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *RedisMembershipRepository) FindByUser(ctx context.Context, userID domain.UserID) ([]*domain.Membership, error) {
	channelIDs, err := r.client.SMembers(ctx, r.userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user memberships: %w", err)
	}

	var result []*domain.Membership
	for _, channelID := range channelIDs {
		m, err := r.Get(ctx, userID, domain.ChannelID(channelID))
		if err == domain.ErrMembershipNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *RedisMembershipRepository) FindOwner(ctx context.Context, channelID domain.ChannelID) (*domain.Membership, error) {
	userID, err := r.client.Get(ctx, r.ownerKey(channelID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel owner: %w", err)
	}

	return r.Get(ctx, domain.UserID(userID), channelID)
}
