package services

import (
	"context"
	"sync"
	"testing"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	apperrors "classhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatService(repos *testRepos, registry ports.ConnectionRegistry) ports.ChatService {
	log := testLogger()
	access := NewAccessService(repos.memberships, log)
	return NewChatService(access, repos.messages, repos.memberPrefs, repos.users, registry, log)
}

func TestPostPersistsThenBroadcasts(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	registry := &fakeRegistry{}
	svc := newChatService(repos, registry)

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice Smith")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")

	require.NoError(t, svc.PostMessage(ctx, "u1", "c1", "hello"))
	require.NoError(t, svc.PostMessage(ctx, "u1", "c1", "world"))

	msgs, err := repos.messages.ListByChannel(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].Seq)
	assert.Equal(t, int64(2), msgs[1].Seq)
	assert.Equal(t, "hello", msgs[0].Text)

	events := registry.events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.ChannelID("c1"), events[0].channelID)

	first, ok := events[0].payload.(ChatEvent)
	require.True(t, ok)
	assert.Equal(t, "message", first.Type)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, "Alice Smith", first.UserFullname)
	assert.Equal(t, "hello", first.Message)
}

func TestPostRejectsNonMember(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	registry := &fakeRegistry{}
	svc := newChatService(repos, registry)

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedUser(ctx, "u2", "bob@example.com", "Bob")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")

	err := svc.PostMessage(ctx, "u2", "c1", "let me in")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeNotAuthorized, appErr.Code)

	assert.Empty(t, registry.events())
	msgs, err := repos.messages.ListByChannel(ctx, "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPostIgnoresEmptyText(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	registry := &fakeRegistry{}
	svc := newChatService(repos, registry)

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")

	require.NoError(t, svc.PostMessage(ctx, "u1", "c1", "   "))
	require.NoError(t, svc.PostMessage(ctx, "u1", "c1", ""))

	assert.Empty(t, registry.events())
	last, err := repos.messages.LastSeq(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

// Sequence numbers continue from the stored log after a restart.
func TestSeqResumesFromStore(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	registry := &fakeRegistry{}

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	require.NoError(t, repos.messages.Append(ctx, &domain.ChatMessage{
		ID: "m7", ChannelID: "c1", UserID: "u1", Text: "old", Seq: 7,
	}))

	svc := newChatService(repos, registry)
	require.NoError(t, svc.PostMessage(ctx, "u1", "c1", "new"))

	last, err := repos.messages.LastSeq(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), last)
}

func TestPostUsesChannelDisplayName(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	registry := &fakeRegistry{}
	svc := newChatService(repos, registry)

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice Smith")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	require.NoError(t, repos.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID:      "u1",
		ChannelID:   "c1",
		DisplayName: "Prof. Smith",
	}))

	require.NoError(t, svc.PostMessage(ctx, "u1", "c1", "quiz tomorrow"))

	events := registry.events()
	require.Len(t, events, 1)
	event := events[0].payload.(ChatEvent)
	assert.Equal(t, "Prof. Smith", event.UserFullname)
}

func TestConcurrentPostsKeepSeqDense(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	registry := &fakeRegistry{}
	svc := newChatService(repos, registry)

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")

	const posters = 20
	var wg sync.WaitGroup
	wg.Add(posters)
	for i := 0; i < posters; i++ {
		go func() {
			defer wg.Done()
			_ = svc.PostMessage(ctx, "u1", "c1", "ping")
		}()
	}
	wg.Wait()

	msgs, err := repos.messages.ListByChannel(ctx, "c1", posters)
	require.NoError(t, err)
	require.Len(t, msgs, posters)
	seen := make(map[int64]bool, posters)
	for _, m := range msgs {
		seen[m.Seq] = true
	}
	for seq := int64(1); seq <= posters; seq++ {
		assert.True(t, seen[seq], "missing seq %d", seq)
	}
	assert.Len(t, registry.events(), posters)
}

func TestHistoryReturnsTail(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	svc := newChatService(repos, &fakeRegistry{})

	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	for i := 1; i <= 5; i++ {
		require.NoError(t, svc.PostMessage(ctx, "u1", "c1", "msg"))
	}

	tail, err := svc.History(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, int64(4), tail[0].Seq)
	assert.Equal(t, int64(5), tail[1].Seq)
}
