package services

import (
	"context"
	"sync"
	"time"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	"classhub/internal/infrastructure/repositories/memory"

	"go.uber.org/zap"
)

// testRepos bundles fresh in-memory repositories for one test.
type testRepos struct {
	channels    ports.ChannelRepository
	memberships ports.MembershipRepository
	memberPrefs ports.MembershipSettingRepository
	device      ports.DeviceSettingsRepository
	tokens      ports.MeetingTokenRepository
	messages    ports.ChatMessageRepository
	users       ports.UserRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		channels:    memory.NewMemoryChannelRepository(),
		memberships: memory.NewMemoryMembershipRepository(),
		memberPrefs: memory.NewMemoryMembershipSettingRepository(),
		device:      memory.NewMemoryDeviceSettingsRepository(),
		tokens:      memory.NewMemoryMeetingTokenRepository(),
		messages:    memory.NewMemoryChatMessageRepository(),
		users:       memory.NewMemoryUserRepository(),
	}
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func (r *testRepos) seedUser(ctx context.Context, id domain.UserID, email, fullName string) *domain.User {
	user := &domain.User{
		ID:        id,
		Email:     email,
		FullName:  fullName,
		CreatedAt: time.Now(),
	}
	if err := r.users.Create(ctx, user); err != nil {
		panic(err)
	}
	return user
}

func (r *testRepos) seedChannel(ctx context.Context, id domain.ChannelID, title string, ownerID domain.UserID) *domain.Channel {
	ch := &domain.Channel{
		ID:        id,
		Title:     title,
		Active:    true,
		Public:    true,
		CreatedAt: time.Now(),
	}
	if err := r.channels.Create(ctx, ch); err != nil {
		panic(err)
	}
	if err := r.memberships.Create(ctx, &domain.Membership{
		UserID:    ownerID,
		ChannelID: id,
		Role:      domain.RoleOwner,
		JoinedAt:  time.Now(),
	}); err != nil {
		panic(err)
	}
	if err := r.device.Create(ctx, domain.DefaultDeviceSettings(id)); err != nil {
		panic(err)
	}
	return ch
}

func (r *testRepos) addMember(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) {
	if err := r.memberships.Create(ctx, &domain.Membership{
		UserID:    userID,
		ChannelID: channelID,
		Role:      domain.RoleMember,
		JoinedAt:  time.Now(),
	}); err != nil {
		panic(err)
	}
}

// fakeMeetingProvider scripts the provider handshake; zero value
// succeeds on every call.
type fakeMeetingProvider struct {
	tokenErr    error
	createErr   error
	validateErr error
	disabled    bool

	tokenCalls    int
	createCalls   int
	validateCalls int
}

func (f *fakeMeetingProvider) GetToken(ctx context.Context) (string, error) {
	f.tokenCalls++
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "tok-abc", nil
}

func (f *fakeMeetingProvider) CreateMeeting(ctx context.Context, token string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return "meeting-1", nil
}

func (f *fakeMeetingProvider) ValidateMeeting(ctx context.Context, token, meetingID string) (ports.MeetingStatus, error) {
	f.validateCalls++
	if f.validateErr != nil {
		return ports.MeetingStatus{}, f.validateErr
	}
	return ports.MeetingStatus{Disabled: f.disabled}, nil
}

// fakeRegistry records every broadcast instead of writing to sockets.
type fakeRegistry struct {
	mu         sync.Mutex
	broadcasts []fakeBroadcast
}

type fakeBroadcast struct {
	channelID domain.ChannelID
	payload   interface{}
}

func (f *fakeRegistry) RegisterChat(channelID domain.ChannelID, conn ports.Conn)   {}
func (f *fakeRegistry) UnregisterChat(channelID domain.ChannelID, conn ports.Conn) {}
func (f *fakeRegistry) RegisterSearch(conn ports.Conn)                             {}
func (f *fakeRegistry) UnregisterSearch(conn ports.Conn)                           {}
func (f *fakeRegistry) ChatSubscribers(channelID domain.ChannelID) int             { return 0 }
func (f *fakeRegistry) SearchSubscribers() int                                     { return 0 }

func (f *fakeRegistry) BroadcastChat(channelID domain.ChannelID, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, fakeBroadcast{channelID: channelID, payload: payload})
}

func (f *fakeRegistry) events() []fakeBroadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeBroadcast, len(f.broadcasts))
	copy(out, f.broadcasts)
	return out
}
