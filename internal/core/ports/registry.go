package ports

import "classhub/internal/core/domain"

// Conn is the write side of one live connection. *websocket.Conn
// satisfies it; tests use in-memory fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// ConnectionRegistry tracks which connections are live-subscribed to
// which channel's chat, plus the unscoped set of search connections.
// Broadcast reaches exactly the connections registered at the moment
// the call is issued; unregistration is idempotent.
type ConnectionRegistry interface {
	RegisterChat(channelID domain.ChannelID, conn Conn)
	UnregisterChat(channelID domain.ChannelID, conn Conn)
	BroadcastChat(channelID domain.ChannelID, payload interface{})
	RegisterSearch(conn Conn)
	UnregisterSearch(conn Conn)
	ChatSubscribers(channelID domain.ChannelID) int
	SearchSubscribers() int
}
