package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	apperrors "classhub/pkg/errors"
	"classhub/pkg/validation"

	"go.uber.org/zap"
)

type settingsService struct {
	access      ports.AccessService
	device      ports.DeviceSettingsRepository
	memberships ports.MembershipRepository
	memberPrefs ports.MembershipSettingRepository
	logger      *zap.SugaredLogger

	// Per-channel write locks; writes to different channels proceed
	// independently.
	mu    sync.Mutex
	locks map[domain.ChannelID]*sync.Mutex
}

func NewSettingsService(
	access ports.AccessService,
	device ports.DeviceSettingsRepository,
	memberships ports.MembershipRepository,
	memberPrefs ports.MembershipSettingRepository,
	logger *zap.SugaredLogger,
) ports.SettingsService {
	return &settingsService{
		access:      access,
		device:      device,
		memberships: memberships,
		memberPrefs: memberPrefs,
		logger:      logger,
		locks:       make(map[domain.ChannelID]*sync.Mutex),
	}
}

func (s *settingsService) Get(ctx context.Context, channelID domain.ChannelID) (*domain.DeviceSettings, error) {
	settings, err := s.device.Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, apperrors.NewNotFoundError("channel settings")
		}
		return nil, fmt.Errorf("get device settings: %w", err)
	}
	return settings, nil
}

// UpdateDeviceSettings applies a partial update to the channel's
// device-permission matrix. Absent fields are untouched.
func (s *settingsService) UpdateDeviceSettings(ctx context.Context, channelID domain.ChannelID, actingUserID domain.UserID, patch domain.DeviceSettingsPatch) (*domain.DeviceSettings, error) {
	if !s.access.CanModifySettings(ctx, actingUserID, channelID) {
		return nil, apperrors.NewNotAuthorizedError("only the channel owner may change settings")
	}

	if err := validatePatch(patch); err != nil {
		return nil, apperrors.NewMalformedInputError(err.Error())
	}

	lock := s.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	settings, err := s.device.Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, apperrors.NewNotFoundError("channel settings")
		}
		return nil, fmt.Errorf("get device settings: %w", err)
	}

	if patch.WebcamFor != nil {
		settings.WebcamFor = *patch.WebcamFor
	}
	if patch.MicroFor != nil {
		settings.MicroFor = *patch.MicroFor
	}
	if patch.ScreenFor != nil {
		settings.ScreenFor = *patch.ScreenFor
	}
	if patch.RecordFor != nil {
		settings.RecordFor = *patch.RecordFor
	}

	if err := s.device.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("update device settings: %w", err)
	}

	s.logger.Infow("device settings updated",
		"channel_id", channelID,
		"acting_user_id", actingUserID,
	)
	return settings, nil
}

// AssignPresenter moves the presenter pointer. The new presenter must be
// a current member of the channel; an empty presenterID clears it.
func (s *settingsService) AssignPresenter(ctx context.Context, channelID domain.ChannelID, actingUserID, presenterID domain.UserID) (*domain.DeviceSettings, error) {
	if !s.access.CanAssignPresenter(ctx, actingUserID, channelID) {
		return nil, apperrors.NewNotAuthorizedError("only the channel owner may assign the presenter")
	}

	if presenterID != "" {
		if _, err := s.memberships.Get(ctx, presenterID, channelID); err != nil {
			return nil, apperrors.NewMalformedInputError("presenter must be a member of the channel")
		}
	}

	lock := s.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	settings, err := s.device.Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, apperrors.NewNotFoundError("channel settings")
		}
		return nil, fmt.Errorf("get device settings: %w", err)
	}

	settings.Presenter = presenterID
	if err := s.device.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("update presenter: %w", err)
	}

	s.logger.Infow("presenter assigned",
		"channel_id", channelID,
		"presenter_id", presenterID,
	)
	return settings, nil
}

// RenameMembership updates exactly one channel-scoped display name.
// Members may rename themselves; the owner may rename anyone.
func (s *settingsService) RenameMembership(ctx context.Context, channelID domain.ChannelID, actingUserID, targetUserID domain.UserID, displayName string) (*domain.MembershipSetting, error) {
	if actingUserID != targetUserID && !s.access.CanRenameOthers(ctx, actingUserID, channelID) {
		return nil, apperrors.NewNotAuthorizedError("only the channel owner may rename other members")
	}
	if actingUserID == targetUserID && s.access.ResolveRole(ctx, actingUserID, channelID) == domain.RoleNone {
		return nil, apperrors.NewNotAuthorizedError("renaming requires channel membership")
	}

	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, apperrors.NewMalformedInputError(err.Error())
	}

	setting, err := s.memberPrefs.Get(ctx, targetUserID, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, apperrors.NewNotFoundError("membership setting")
		}
		return nil, fmt.Errorf("get membership setting: %w", err)
	}

	setting.DisplayName = displayName
	if err := s.memberPrefs.Update(ctx, setting); err != nil {
		return nil, fmt.Errorf("update membership setting: %w", err)
	}

	return setting, nil
}

func (s *settingsService) channelLock(channelID domain.ChannelID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[channelID] = lock
	}
	return lock
}

func validatePatch(patch domain.DeviceSettingsPatch) error {
	for _, opt := range []*domain.DeviceOption{patch.WebcamFor, patch.MicroFor, patch.ScreenFor, patch.RecordFor} {
		if opt != nil && !domain.ValidDeviceOption(*opt) {
			return fmt.Errorf("device option must be one of everyone, presenter, owner")
		}
	}
	return nil
}
