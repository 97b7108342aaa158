package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisMembershipSettingRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisMembershipSettingRepository(client *redis.Client) ports.MembershipSettingRepository {
	return &RedisMembershipSettingRepository{
		client: client,
		prefix: keyPrefix + "member_setting:",
	}
}

func (r *RedisMembershipSettingRepository) settingKey(userID domain.UserID, channelID domain.ChannelID) string {
	return r.prefix + string(channelID) + ":" + string(userID)
}

func (r *RedisMembershipSettingRepository) channelIndexKey(channelID domain.ChannelID) string {
	return r.prefix + "by_channel:" + string(channelID)
}

func (r *RedisMembershipSettingRepository) Create(ctx context.Context, s *domain.MembershipSetting) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal membership setting: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.settingKey(s.UserID, s.ChannelID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set membership setting in Redis: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateUser
	}

	if err := r.client.SAdd(ctx, r.channelIndexKey(s.ChannelID), string(s.UserID)).Err(); err != nil {
		return fmt.Errorf("failed to index membership setting: %w", err)
	}

	return nil
}

func (r *RedisMembershipSettingRepository) Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.MembershipSetting, error) {
	data, err := r.client.Get(ctx, r.settingKey(userID, channelID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership setting from Redis: %w", err)
	}

	var s domain.MembershipSetting
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership setting: %w", err)
	}

	return &s, nil
}

func (r *RedisMembershipSettingRepository) Update(ctx context.Context, s *domain.MembershipSetting) error {
	if _, err := r.Get(ctx, s.UserID, s.ChannelID); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal membership setting: %w", err)
	}
	if err := r.client.Set(ctx, r.settingKey(s.UserID, s.ChannelID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update membership setting in Redis: %w", err)
	}

	return nil
}

func (r *RedisMembershipSettingRepository) Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	if _, err := r.Get(ctx, userID, channelID); err != nil {
		return err
	}

	if err := r.client.SRem(ctx, r.channelIndexKey(channelID), string(userID)).Err(); err != nil {
		return fmt.Errorf("failed to deindex membership setting: %w", err)
	}
	if err := r.client.Del(ctx, r.settingKey(userID, channelID)).Err(); err != nil {
		return fmt.Errorf("failed to delete membership setting from Redis: %w", err)
	}

	return nil
}

func (r *RedisMembershipSettingRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	userIDs, err := r.client.SMembers(ctx, r.channelIndexKey(channelID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list membership settings: %w", err)
	}

	for _, userID := range userIDs {
		if err := r.Delete(ctx, domain.UserID(userID), channelID); err != nil && err != domain.ErrSettingsNotFound {
			return err
		}
	}

	if err := r.client.Del(ctx, r.channelIndexKey(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to drop membership setting index: %w", err)
	}

	return nil
}
