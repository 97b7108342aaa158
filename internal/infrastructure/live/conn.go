package live

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriter is the write side of a gorilla connection. *websocket.Conn
// satisfies it; tests substitute stubs.
type wsWriter interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// wsConn serializes all writers to one websocket connection. gorilla
// permits at most one concurrent writer, but broadcasts arrive from
// other posters' goroutines while the handler loop writes pings and
// error frames, so every write path must go through this wrapper.
type wsConn struct {
	mu           sync.Mutex
	raw          wsWriter
	writeTimeout time.Duration
}

func newWSConn(raw wsWriter, writeTimeout time.Duration) *wsConn {
	return &wsConn{raw: raw, writeTimeout: writeTimeout}
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.raw.WriteJSON(v)
}

func (c *wsConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.raw.WriteMessage(websocket.PingMessage, nil)
}

// Close is deliberately not serialized with writes: closing must be
// able to interrupt a writer blocked on a dead peer.
func (c *wsConn) Close() error {
	return c.raw.Close()
}

// frameReader is the read side of a gorilla connection.
type frameReader interface {
	ReadMessage() (messageType int, p []byte, err error)
	SetReadDeadline(t time.Time) error
}

// readFrames pumps inbound frames into frames until the connection
// fails or done closes. Closing done releases the pump even when
// frames is full and the handler loop has already returned.
func readFrames(conn frameReader, readTimeout time.Duration, frames chan<- []byte, errs chan<- error, done <-chan struct{}) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case errs <- err:
			case <-done:
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		select {
		case frames <- raw:
		case <-done:
			return
		}
	}
}
