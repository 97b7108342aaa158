package services

import (
	"context"
	"fmt"
	"strings"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"go.uber.org/zap"
)

const (
	// ScopeMine matches channels the acting user owns.
	ScopeMine = "my"
	// ScopeJoined matches channels the acting user holds any role in.
	ScopeJoined = "access"
)

const unknownOwner = "unknown"

type searchService struct {
	channels    ports.ChannelRepository
	memberships ports.MembershipRepository
	settings    ports.MembershipSettingRepository
	users       ports.UserRepository
	logger      *zap.SugaredLogger
}

func NewSearchService(
	channels ports.ChannelRepository,
	memberships ports.MembershipRepository,
	settings ports.MembershipSettingRepository,
	users ports.UserRepository,
	logger *zap.SugaredLogger,
) ports.SearchService {
	return &searchService{
		channels:    channels,
		memberships: memberships,
		settings:    settings,
		users:       users,
		logger:      logger,
	}
}

// Query evaluates one live directory search. The result set fully
// replaces the client's previous view for every query.
func (s *searchService) Query(ctx context.Context, queryText, scopeFilter, actingEmail string) ([]ports.SearchResult, error) {
	candidates, err := s.candidates(ctx, scopeFilter, actingEmail)
	if err != nil {
		return nil, err
	}

	results := make([]ports.SearchResult, 0, len(candidates))
	for _, ch := range candidates {
		ownerName, ownerEmail := s.ownerIdentity(ctx, ch.ID)

		// Case-sensitive substring against the title or the owner's
		// resolved display name, matching the stored-directory
		// wildcard-wrapped lookup.
		if queryText != "" &&
			!strings.Contains(ch.Title, queryText) &&
			!strings.Contains(ownerName, queryText) {
			continue
		}

		results = append(results, ports.SearchResult{
			ID:         ch.ID,
			Title:      ch.Title,
			URL:        ch.URL,
			PhotoURL:   ch.PhotoURL,
			Public:     ch.Public,
			OwnerName:  ownerName,
			OwnerEmail: ownerEmail,
		})
	}

	return results, nil
}

// candidates narrows the channel set by the scope filter before the
// text match is applied.
func (s *searchService) candidates(ctx context.Context, scopeFilter, actingEmail string) ([]*domain.Channel, error) {
	switch scopeFilter {
	case "":
		return s.channels.ListAll(ctx)

	case ScopeMine, ScopeJoined:
		user, err := s.users.GetByEmail(ctx, actingEmail)
		if err != nil {
			// Unknown user holds no memberships at all.
			return nil, nil
		}

		memberships, err := s.memberships.FindByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("find memberships for %s: %w", user.ID, err)
		}

		var out []*domain.Channel
		for _, m := range memberships {
			if scopeFilter == ScopeMine && m.Role != domain.RoleOwner {
				continue
			}
			ch, err := s.channels.GetByID(ctx, m.ChannelID)
			if err != nil {
				s.logger.Warnw("membership points at missing channel",
					"channel_id", m.ChannelID,
					"user_id", m.UserID,
				)
				continue
			}
			out = append(out, ch)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown scope filter %q", scopeFilter)
	}
}

// ownerIdentity resolves the owning member's display name and email,
// defaulting to a placeholder when the channel has no owner row.
func (s *searchService) ownerIdentity(ctx context.Context, channelID domain.ChannelID) (string, string) {
	owner, err := s.memberships.FindOwner(ctx, channelID)
	if err != nil {
		return unknownOwner, unknownOwner
	}

	name := ""
	if setting, err := s.settings.Get(ctx, owner.UserID, channelID); err == nil {
		name = setting.DisplayName
	}

	email := unknownOwner
	if user, err := s.users.GetByID(ctx, owner.UserID); err == nil {
		email = user.Email
		if name == "" {
			name = user.FullName
		}
	}
	if name == "" {
		name = unknownOwner
	}

	return name, email
}
