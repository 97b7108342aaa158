package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	apperrors "classhub/pkg/errors"
	"classhub/pkg/utils"

	"go.uber.org/zap"
)

// ChatEvent is the payload fanned out to every chat subscriber of a
// channel when a message is posted.
type ChatEvent struct {
	Type         string           `json:"type"`
	ChannelID    domain.ChannelID `json:"channel_id"`
	UserID       domain.UserID    `json:"user_id"`
	UserFullname string           `json:"user_fullname"`
	Message      string           `json:"message"`
	Seq          int64            `json:"seq"`
	SentAt       time.Time        `json:"sent_at"`
}

// channelLog serializes append+broadcast for one channel so every
// subscriber observes the same total order.
type channelLog struct {
	mu     sync.Mutex
	seq    int64
	loaded bool
}

type chatService struct {
	access   ports.AccessService
	messages ports.ChatMessageRepository
	settings ports.MembershipSettingRepository
	users    ports.UserRepository
	registry ports.ConnectionRegistry
	logger   *zap.SugaredLogger

	mu   sync.Mutex
	logs map[domain.ChannelID]*channelLog
}

func NewChatService(
	access ports.AccessService,
	messages ports.ChatMessageRepository,
	settings ports.MembershipSettingRepository,
	users ports.UserRepository,
	registry ports.ConnectionRegistry,
	logger *zap.SugaredLogger,
) ports.ChatService {
	return &chatService{
		access:   access,
		messages: messages,
		settings: settings,
		users:    users,
		registry: registry,
		logger:   logger,
		logs:     make(map[domain.ChannelID]*channelLog),
	}
}

// PostMessage appends a message to the channel log and fans it out to
// every currently-registered chat subscriber of the channel, including
// the sender. The append and the broadcast are serialized per channel;
// the message is persisted before anything is delivered.
func (s *chatService) PostMessage(ctx context.Context, userID domain.UserID, channelID domain.ChannelID, text string) error {
	if !s.access.CanPost(ctx, userID, channelID) {
		return apperrors.NewNotAuthorizedError("posting requires channel membership")
	}

	text = utils.SanitizeText(text)
	if text == "" {
		// Empty frames are ignored, not treated as errors.
		return nil
	}

	log := s.channelLog(channelID)
	log.mu.Lock()
	defer log.mu.Unlock()

	if !log.loaded {
		last, err := s.messages.LastSeq(ctx, channelID)
		if err != nil {
			return fmt.Errorf("load last seq for channel %s: %w", channelID, err)
		}
		log.seq = last
		log.loaded = true
	}

	msg := &domain.ChatMessage{
		ID:        utils.GenerateMessageID(),
		ChannelID: channelID,
		UserID:    userID,
		Text:      text,
		Seq:       log.seq + 1,
		SentAt:    time.Now(),
	}

	if err := s.messages.Append(ctx, msg); err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	log.seq = msg.Seq

	s.registry.BroadcastChat(channelID, ChatEvent{
		Type:         "message",
		ChannelID:    channelID,
		UserID:       userID,
		UserFullname: s.displayName(ctx, userID, channelID),
		Message:      text,
		Seq:          msg.Seq,
		SentAt:       msg.SentAt,
	})

	return nil
}

func (s *chatService) History(ctx context.Context, channelID domain.ChannelID, limit int) ([]*domain.ChatMessage, error) {
	return s.messages.ListByChannel(ctx, channelID, limit)
}

func (s *chatService) channelLog(channelID domain.ChannelID) *channelLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[channelID]
	if !ok {
		log = &channelLog{}
		s.logs[channelID] = log
	}
	return log
}

// displayName resolves the sender's channel-scoped name override,
// falling back to the user's full name.
func (s *chatService) displayName(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) string {
	if setting, err := s.settings.Get(ctx, userID, channelID); err == nil && setting.DisplayName != "" {
		return setting.DisplayName
	}
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		return user.FullName
	}
	s.logger.Warnw("no display name for sender", "user_id", userID, "channel_id", channelID)
	return "unknown"
}
