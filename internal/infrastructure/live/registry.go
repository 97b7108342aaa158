package live

import (
	"sync"
	"time"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	"classhub/internal/infrastructure/monitoring"

	"go.uber.org/zap"
)

// Registry owns every live connection for its lifetime: chat
// connections keyed by channel, search connections in one global set.
// It is constructed at process start and injected into the session
// components; nothing else holds connection references.
type Registry struct {
	mu     sync.RWMutex
	chat   map[domain.ChannelID][]ports.Conn
	search map[ports.Conn]struct{}

	collector *monitoring.Collector
	logger    *zap.SugaredLogger
}

func NewRegistry(collector *monitoring.Collector, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		chat:      make(map[domain.ChannelID][]ports.Conn),
		search:    make(map[ports.Conn]struct{}),
		collector: collector,
		logger:    logger,
	}
}

// RegisterChat subscribes conn to the channel's chat. The channel's
// connection set is created lazily on first registration.
func (r *Registry) RegisterChat(channelID domain.ChannelID, conn ports.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.chat[channelID] {
		if existing == conn {
			return
		}
	}
	r.chat[channelID] = append(r.chat[channelID], conn)
	r.collector.SetChatConnections(r.chatCountLocked())
}

// UnregisterChat removes conn from the channel's set. Calling it for a
// connection that was already removed is a no-op.
func (r *Registry) UnregisterChat(channelID domain.ChannelID, conn ports.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.chat[channelID]
	for i, existing := range conns {
		if existing == conn {
			r.chat[channelID] = append(conns[:i:i], conns[i+1:]...)
			break
		}
	}
	if len(r.chat[channelID]) == 0 {
		delete(r.chat, channelID)
	}
	r.collector.SetChatConnections(r.chatCountLocked())
}

// BroadcastChat delivers payload to every connection registered to the
// channel at the moment of the call. A failing connection never blocks
// delivery to the others; it is closed and dropped from the registry.
func (r *Registry) BroadcastChat(channelID domain.ChannelID, payload interface{}) {
	r.mu.RLock()
	snapshot := make([]ports.Conn, len(r.chat[channelID]))
	copy(snapshot, r.chat[channelID])
	r.mu.RUnlock()

	started := time.Now()
	var failed []ports.Conn
	for _, conn := range snapshot {
		if err := conn.WriteJSON(payload); err != nil {
			r.logger.Warnw("chat broadcast delivery failed",
				"channel_id", channelID,
				"error", err,
			)
			r.collector.RecordBroadcastFailure()
			failed = append(failed, conn)
			continue
		}
		r.collector.RecordBroadcastDelivery()
	}
	r.collector.RecordBroadcastRound(time.Since(started))

	for _, conn := range failed {
		r.UnregisterChat(channelID, conn)
		_ = conn.Close()
	}
}

// RegisterSearch adds conn to the global search subscriber set.
func (r *Registry) RegisterSearch(conn ports.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.search[conn] = struct{}{}
	r.collector.SetSearchConnections(len(r.search))
}

// UnregisterSearch is idempotent, like UnregisterChat.
func (r *Registry) UnregisterSearch(conn ports.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.search, conn)
	r.collector.SetSearchConnections(len(r.search))
}

// ChatSubscribers reports the number of live chat connections for one channel.
func (r *Registry) ChatSubscribers(channelID domain.ChannelID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chat[channelID])
}

// SearchSubscribers reports the number of live search connections.
func (r *Registry) SearchSubscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.search)
}

func (r *Registry) chatCountLocked() int {
	total := 0
	for _, conns := range r.chat {
		total += len(conns)
	}
	return total
}
