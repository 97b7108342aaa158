package live

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// overlapWriter fails the test if two writes ever run concurrently,
// the condition gorilla connections panic on.
type overlapWriter struct {
	t       *testing.T
	inWrite atomic.Bool
	writes  atomic.Int64
}

func (w *overlapWriter) enter() {
	if !w.inWrite.CompareAndSwap(false, true) {
		w.t.Error("concurrent write to connection")
	}
	time.Sleep(time.Millisecond)
	w.writes.Add(1)
	w.inWrite.Store(false)
}

func (w *overlapWriter) WriteJSON(v interface{}) error {
	w.enter()
	return nil
}

func (w *overlapWriter) WriteMessage(messageType int, data []byte) error {
	w.enter()
	return nil
}

func (w *overlapWriter) SetWriteDeadline(t time.Time) error { return nil }
func (w *overlapWriter) Close() error                       { return nil }

// Broadcast deliveries arrive from other posters' goroutines while the
// handler loop writes pings; both paths must share one writer at a time.
func TestConnSerializesConcurrentWriters(t *testing.T) {
	raw := &overlapWriter{t: t}
	conn := newWSConn(raw, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, conn.WriteJSON(map[string]string{"message": "hi"}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, conn.Ping())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), raw.writes.Load())
}

type scriptedReader struct {
	frames int32
	served atomic.Int32
	err    error
}

func (r *scriptedReader) ReadMessage() (int, []byte, error) {
	if r.served.Add(1) > r.frames {
		if r.err != nil {
			return 0, nil, r.err
		}
		// Endless frames, like a chatty client.
		return 1, []byte(`{}`), nil
	}
	return 1, []byte(`{}`), nil
}

func (r *scriptedReader) SetReadDeadline(t time.Time) error { return nil }

// Closing done must release the pump even when the frame channel is
// full and the handler loop is gone.
func TestReadFramesStopsWhenDoneCloses(t *testing.T) {
	frames := make(chan []byte, 1)
	errs := make(chan error, 1)
	done := make(chan struct{})

	returned := make(chan struct{})
	go func() {
		readFrames(&scriptedReader{}, time.Second, frames, errs, done)
		close(returned)
	}()

	// Let the pump fill the channel and block on the next send.
	time.Sleep(10 * time.Millisecond)
	close(done)

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("reader pump did not stop after done closed")
	}
}

func TestReadFramesReportsReadError(t *testing.T) {
	frames := make(chan []byte, 4)
	errs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	readErr := errors.New("connection reset")
	readFrames(&scriptedReader{frames: 2, err: readErr}, time.Second, frames, errs, done)

	assert.Len(t, frames, 2)
	select {
	case err := <-errs:
		assert.Equal(t, readErr, err)
	default:
		t.Fatal("read error was not reported")
	}
}
