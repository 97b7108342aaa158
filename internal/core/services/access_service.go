package services

import (
	"context"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"go.uber.org/zap"
)

type accessService struct {
	memberships ports.MembershipRepository
	logger      *zap.SugaredLogger
}

// NewAccessService builds the authorization gate every mutating
// operation goes through.
func NewAccessService(memberships ports.MembershipRepository, logger *zap.SugaredLogger) ports.AccessService {
	return &accessService{
		memberships: memberships,
		logger:      logger,
	}
}

// ResolveRole looks up the user's role in the channel. A missing
// membership row resolves to RoleNone; callers treat that as "not
// authorized", never as an error.
func (s *accessService) ResolveRole(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) domain.Role {
	m, err := s.memberships.Get(ctx, userID, channelID)
	if err != nil {
		return domain.RoleNone
	}
	return m.Role
}

func (s *accessService) CanModifySettings(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool {
	return s.isOwner(ctx, userID, channelID)
}

func (s *accessService) CanAssignPresenter(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool {
	return s.isOwner(ctx, userID, channelID)
}

func (s *accessService) CanDelete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool {
	return s.isOwner(ctx, userID, channelID)
}

func (s *accessService) CanRenameOthers(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool {
	return s.isOwner(ctx, userID, channelID)
}

// CanPost allows any membership role, owner or member.
func (s *accessService) CanPost(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool {
	if userID == "" {
		return false
	}
	return s.ResolveRole(ctx, userID, channelID) != domain.RoleNone
}

func (s *accessService) isOwner(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool {
	if userID == "" {
		return false
	}
	role := s.ResolveRole(ctx, userID, channelID)
	if role != domain.RoleOwner {
		s.logger.Debugw("owner check failed",
			"user_id", userID,
			"channel_id", channelID,
			"role", role,
		)
		return false
	}
	return true
}
