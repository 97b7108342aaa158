package ports

import (
	"context"

	"classhub/internal/core/domain"
)

type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	GetByID(ctx context.Context, id domain.ChannelID) (*domain.Channel, error)
	GetByTitle(ctx context.Context, title string) (*domain.Channel, error)
	Update(ctx context.Context, channel *domain.Channel) error
	Delete(ctx context.Context, id domain.ChannelID) error
	List(ctx context.Context, offset, limit int) ([]*domain.Channel, error)
	ListAll(ctx context.Context) ([]*domain.Channel, error)
}

type MembershipRepository interface {
	// Create rejects a second owner row for the same channel with
	// domain.ErrDuplicateOwner.
	Create(ctx context.Context, m *domain.Membership) error
	Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.Membership, error)
	Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error
	DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error
	FindByChannel(ctx context.Context, channelID domain.ChannelID) ([]*domain.Membership, error)
	FindByUser(ctx context.Context, userID domain.UserID) ([]*domain.Membership, error)
	FindOwner(ctx context.Context, channelID domain.ChannelID) (*domain.Membership, error)
}

type MembershipSettingRepository interface {
	Create(ctx context.Context, s *domain.MembershipSetting) error
	Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.MembershipSetting, error)
	Update(ctx context.Context, s *domain.MembershipSetting) error
	Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error
	DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error
}

type DeviceSettingsRepository interface {
	Create(ctx context.Context, s *domain.DeviceSettings) error
	Get(ctx context.Context, channelID domain.ChannelID) (*domain.DeviceSettings, error)
	Update(ctx context.Context, s *domain.DeviceSettings) error
	DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error
}

type ChatMessageRepository interface {
	Append(ctx context.Context, msg *domain.ChatMessage) error
	ListByChannel(ctx context.Context, channelID domain.ChannelID, limit int) ([]*domain.ChatMessage, error)
	LastSeq(ctx context.Context, channelID domain.ChannelID) (int64, error)
	DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error
}

type MeetingTokenRepository interface {
	Create(ctx context.Context, t *domain.MeetingToken) error
	GetByChannel(ctx context.Context, channelID domain.ChannelID) (*domain.MeetingToken, error)
	DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
