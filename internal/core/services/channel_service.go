package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	apperrors "classhub/pkg/errors"
	"classhub/pkg/utils"
	"classhub/pkg/validation"

	"go.uber.org/zap"
)

type channelService struct {
	channels    ports.ChannelRepository
	memberships ports.MembershipRepository
	memberPrefs ports.MembershipSettingRepository
	device      ports.DeviceSettingsRepository
	tokens      ports.MeetingTokenRepository
	messages    ports.ChatMessageRepository
	users       ports.UserRepository
	access      ports.AccessService
	meetings    ports.MeetingProvider
	logger      *zap.SugaredLogger
}

func NewChannelService(
	channels ports.ChannelRepository,
	memberships ports.MembershipRepository,
	memberPrefs ports.MembershipSettingRepository,
	device ports.DeviceSettingsRepository,
	tokens ports.MeetingTokenRepository,
	messages ports.ChatMessageRepository,
	users ports.UserRepository,
	access ports.AccessService,
	meetings ports.MeetingProvider,
	logger *zap.SugaredLogger,
) ports.ChannelService {
	return &channelService{
		channels:    channels,
		memberships: memberships,
		memberPrefs: memberPrefs,
		device:      device,
		tokens:      tokens,
		messages:    messages,
		users:       users,
		access:      access,
		meetings:    meetings,
		logger:      logger,
	}
}

// Create provisions a channel: the channel row, the owner membership,
// the owner's membership setting, the default device matrix and the
// external meeting. Any step failing undoes everything written so far;
// a half-created channel is never left behind.
func (s *channelService) Create(ctx context.Context, actingUserID domain.UserID, title, url, photoURL string, public bool) (*domain.Channel, error) {
	if err := validation.ValidateChannelTitle(title); err != nil {
		return nil, apperrors.NewMalformedInputError(err.Error())
	}

	owner, err := s.users.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("user")
	}

	if _, err := s.channels.GetByTitle(ctx, title); err == nil {
		return nil, apperrors.NewConflictError("channel title already taken")
	}

	channel := &domain.Channel{
		ID:        domain.ChannelID(utils.GenerateChannelID()),
		Title:     title,
		URL:       url,
		PhotoURL:  photoURL,
		Active:    true,
		Public:    public,
		CreatedAt: time.Now(),
	}

	if err := s.channels.Create(ctx, channel); err != nil {
		if errors.Is(err, domain.ErrDuplicateTitle) {
			return nil, apperrors.NewConflictError("channel title already taken")
		}
		return nil, fmt.Errorf("create channel: %w", err)
	}

	if err := s.memberships.Create(ctx, &domain.Membership{
		UserID:    owner.ID,
		ChannelID: channel.ID,
		Role:      domain.RoleOwner,
		JoinedAt:  time.Now(),
	}); err != nil {
		s.compensateCreate(ctx, channel.ID)
		return nil, fmt.Errorf("create owner membership: %w", err)
	}

	if err := s.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID:      owner.ID,
		ChannelID:   channel.ID,
		DisplayName: owner.FullName,
	}); err != nil {
		s.compensateCreate(ctx, channel.ID)
		return nil, fmt.Errorf("create owner membership setting: %w", err)
	}

	if err := s.device.Create(ctx, domain.DefaultDeviceSettings(channel.ID)); err != nil {
		s.compensateCreate(ctx, channel.ID)
		return nil, fmt.Errorf("create device settings: %w", err)
	}

	if err := s.provisionMeeting(ctx, channel.ID); err != nil {
		s.compensateCreate(ctx, channel.ID)
		return nil, err
	}

	s.logger.Infow("channel created",
		"channel_id", channel.ID,
		"title", channel.Title,
		"owner_id", owner.ID,
	)
	return channel, nil
}

// provisionMeeting walks the external provider's token/create/validate
// handshake and stores the resulting token row.
func (s *channelService) provisionMeeting(ctx context.Context, channelID domain.ChannelID) error {
	token, err := s.meetings.GetToken(ctx)
	if err != nil {
		return apperrors.NewUpstreamFailureError("meeting provider token request failed", err)
	}

	meetingID, err := s.meetings.CreateMeeting(ctx, token)
	if err != nil {
		return apperrors.NewUpstreamFailureError("meeting creation failed", err)
	}

	status, err := s.meetings.ValidateMeeting(ctx, token, meetingID)
	if err != nil {
		return apperrors.NewUpstreamFailureError("meeting validation failed", err)
	}
	if status.Disabled {
		return apperrors.NewUpstreamFailureError("meeting is disabled by the provider", domain.ErrMeetingDisabled)
	}

	if err := s.tokens.Create(ctx, &domain.MeetingToken{
		ChannelID: channelID,
		Token:     token,
		MeetingID: meetingID,
	}); err != nil {
		return fmt.Errorf("store meeting token: %w", err)
	}

	return nil
}

type cascadeStep struct {
	name string
	fn   func(context.Context, domain.ChannelID) error
}

// compensateCreate undoes the rows written by a failed Create, in
// reverse creation order.
func (s *channelService) compensateCreate(ctx context.Context, channelID domain.ChannelID) {
	steps := []cascadeStep{
		{"meeting token", s.tokens.DeleteByChannel},
		{"device settings", s.device.DeleteByChannel},
		{"membership settings", s.memberPrefs.DeleteByChannel},
		{"memberships", s.memberships.DeleteByChannel},
		{"channel", s.channels.Delete},
	}
	for _, step := range steps {
		if err := step.fn(ctx, channelID); err != nil &&
			!errors.Is(err, domain.ErrChannelNotFound) &&
			!errors.Is(err, domain.ErrTokenNotFound) &&
			!errors.Is(err, domain.ErrSettingsNotFound) {
			s.logger.Errorw("compensation step failed",
				"channel_id", channelID,
				"step", step.name,
				"error", err,
			)
		}
	}
}

func (s *channelService) Get(ctx context.Context, id domain.ChannelID) (*domain.Channel, error) {
	channel, err := s.channels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return nil, apperrors.NewNotFoundError("channel")
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return channel, nil
}

func (s *channelService) List(ctx context.Context, page, pageSize int) ([]*domain.Channel, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.channels.List(ctx, (page-1)*pageSize, pageSize)
}

// Update applies a partial channel edit; only the owner may do it.
func (s *channelService) Update(ctx context.Context, actingUserID domain.UserID, id domain.ChannelID, patch ports.ChannelPatch) (*domain.Channel, error) {
	channel, err := s.channels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return nil, apperrors.NewNotFoundError("channel")
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}

	if !s.access.CanModifySettings(ctx, actingUserID, id) {
		return nil, apperrors.NewNotAuthorizedError("only the channel owner may edit the channel")
	}

	if patch.Title != nil {
		if err := validation.ValidateChannelTitle(*patch.Title); err != nil {
			return nil, apperrors.NewMalformedInputError(err.Error())
		}
		if existing, err := s.channels.GetByTitle(ctx, *patch.Title); err == nil && existing.ID != id {
			return nil, apperrors.NewConflictError("channel title already taken")
		}
		channel.Title = *patch.Title
	}
	if patch.URL != nil {
		channel.URL = *patch.URL
	}
	if patch.PhotoURL != nil {
		channel.PhotoURL = *patch.PhotoURL
	}
	if patch.Active != nil {
		channel.Active = *patch.Active
	}
	if patch.Public != nil {
		channel.Public = *patch.Public
	}

	if err := s.channels.Update(ctx, channel); err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return channel, nil
}

// Delete removes the channel and cascades over its membership rows,
// settings, chat log and meeting token.
func (s *channelService) Delete(ctx context.Context, actingUserID domain.UserID, id domain.ChannelID) error {
	if _, err := s.channels.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return apperrors.NewNotFoundError("channel")
		}
		return fmt.Errorf("get channel: %w", err)
	}

	if !s.access.CanDelete(ctx, actingUserID, id) {
		return apperrors.NewNotAuthorizedError("only the channel owner may delete the channel")
	}

	steps := []cascadeStep{
		{"meeting token", s.tokens.DeleteByChannel},
		{"chat log", s.messages.DeleteByChannel},
		{"device settings", s.device.DeleteByChannel},
		{"membership settings", s.memberPrefs.DeleteByChannel},
		{"memberships", s.memberships.DeleteByChannel},
	}
	for _, step := range steps {
		if err := step.fn(ctx, id); err != nil &&
			!errors.Is(err, domain.ErrTokenNotFound) &&
			!errors.Is(err, domain.ErrSettingsNotFound) {
			return fmt.Errorf("cascade delete %s: %w", step.name, err)
		}
	}

	if err := s.channels.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}

	s.logger.Infow("channel deleted", "channel_id", id, "acting_user_id", actingUserID)
	return nil
}

// Connect joins a user to a channel with the default member role and
// seeds their channel-scoped display name.
func (s *channelService) Connect(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.Membership, error) {
	if _, err := s.channels.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, domain.ErrChannelNotFound) {
			return nil, apperrors.NewNotFoundError("channel")
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("user")
	}

	// Connecting twice is a no-op returning the existing row.
	if existing, err := s.memberships.Get(ctx, userID, channelID); err == nil {
		return existing, nil
	}

	membership := &domain.Membership{
		UserID:    userID,
		ChannelID: channelID,
		Role:      domain.RoleMember,
		JoinedAt:  time.Now(),
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}

	if err := s.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID:      userID,
		ChannelID:   channelID,
		DisplayName: user.FullName,
	}); err != nil {
		return nil, fmt.Errorf("create membership setting: %w", err)
	}

	return membership, nil
}

// Disconnect removes a member from a channel. The owner cannot
// disconnect; owners delete the channel instead, which keeps the
// one-owner invariant intact.
func (s *channelService) Disconnect(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	membership, err := s.memberships.Get(ctx, userID, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return apperrors.NewNotFoundError("membership")
		}
		return fmt.Errorf("get membership: %w", err)
	}

	if membership.Role == domain.RoleOwner {
		return apperrors.NewNotAuthorizedError("the owner cannot leave the channel; delete it instead")
	}

	if err := s.memberPrefs.Delete(ctx, userID, channelID); err != nil &&
		!errors.Is(err, domain.ErrSettingsNotFound) {
		return fmt.Errorf("delete membership setting: %w", err)
	}
	if err := s.memberships.Delete(ctx, userID, channelID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	return nil
}
