package live

import (
	"errors"
	"sync"
	"testing"

	"classhub/internal/infrastructure/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	payloads []interface{}
	failWith error
	closed   bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.payloads = append(f.payloads, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func newTestRegistry() *Registry {
	return NewRegistry(nil, zap.NewNop().Sugar())
}

func TestRegistryBroadcastReachesOnlyChannelSubscribers(t *testing.T) {
	registry := newTestRegistry()

	a := &fakeConn{}
	b := &fakeConn{}
	other := &fakeConn{}

	registry.RegisterChat("chn_math", a)
	registry.RegisterChat("chn_math", b)
	registry.RegisterChat("chn_history", other)

	registry.BroadcastChat("chn_math", map[string]string{"message": "hello"})

	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())
	assert.Equal(t, 0, other.received())
}

func TestRegistryRegisterChatIsIdempotent(t *testing.T) {
	registry := newTestRegistry()

	conn := &fakeConn{}
	registry.RegisterChat("chn_math", conn)
	registry.RegisterChat("chn_math", conn)

	require.Equal(t, 1, registry.ChatSubscribers("chn_math"))

	registry.BroadcastChat("chn_math", "once")
	assert.Equal(t, 1, conn.received())
}

func TestRegistryUnregisterChatIsIdempotent(t *testing.T) {
	registry := newTestRegistry()

	conn := &fakeConn{}
	registry.RegisterChat("chn_math", conn)

	registry.UnregisterChat("chn_math", conn)
	registry.UnregisterChat("chn_math", conn)

	assert.Equal(t, 0, registry.ChatSubscribers("chn_math"))

	registry.BroadcastChat("chn_math", "gone")
	assert.Equal(t, 0, conn.received())
}

func TestRegistryUnregisteredConnectionMissesLaterBroadcasts(t *testing.T) {
	registry := newTestRegistry()

	stayer := &fakeConn{}
	leaver := &fakeConn{}
	registry.RegisterChat("chn_math", stayer)
	registry.RegisterChat("chn_math", leaver)

	registry.BroadcastChat("chn_math", "first")
	registry.UnregisterChat("chn_math", leaver)
	registry.BroadcastChat("chn_math", "second")

	assert.Equal(t, 2, stayer.received())
	assert.Equal(t, 1, leaver.received())
}

func TestRegistryFailingConnectionIsDroppedAndClosed(t *testing.T) {
	registry := newTestRegistry()

	healthy := &fakeConn{}
	broken := &fakeConn{failWith: errors.New("write: broken pipe")}
	registry.RegisterChat("chn_math", healthy)
	registry.RegisterChat("chn_math", broken)

	registry.BroadcastChat("chn_math", "payload")

	assert.Equal(t, 1, healthy.received())
	assert.Equal(t, 1, registry.ChatSubscribers("chn_math"))
	assert.True(t, broken.closed)

	// The healthy connection keeps receiving after the broken one is gone.
	registry.BroadcastChat("chn_math", "payload")
	assert.Equal(t, 2, healthy.received())
}

func TestRegistrySearchSubscribers(t *testing.T) {
	registry := newTestRegistry()

	a := &fakeConn{}
	b := &fakeConn{}
	registry.RegisterSearch(a)
	registry.RegisterSearch(b)
	assert.Equal(t, 2, registry.SearchSubscribers())

	registry.UnregisterSearch(a)
	registry.UnregisterSearch(a)
	assert.Equal(t, 1, registry.SearchSubscribers())
}

func TestRegistryBroadcastRecordsMetrics(t *testing.T) {
	collector := monitoring.NewCollector()
	registry := NewRegistry(collector, zap.NewNop().Sugar())

	registry.RegisterChat("chn_math", &fakeConn{})
	registry.RegisterChat("chn_math", &fakeConn{})
	registry.RegisterChat("chn_math", &fakeConn{failWith: errors.New("broken pipe")})

	registry.BroadcastChat("chn_math", "payload")

	assert.Equal(t, float64(2), counterValue(t, collector, "classhub_broadcast_deliveries_total"))
	assert.Equal(t, float64(1), counterValue(t, collector, "classhub_broadcast_failures_total"))
	assert.Equal(t, uint64(1), histogramSamples(t, collector, "classhub_broadcast_duration_seconds"))
}

func counterValue(t *testing.T, collector *monitoring.Collector, name string) float64 {
	t.Helper()
	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func histogramSamples(t *testing.T, collector *monitoring.Collector, name string) uint64 {
	t.Helper()
	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRegistryConcurrentRegisterAndBroadcast(t *testing.T) {
	registry := newTestRegistry()

	var wg sync.WaitGroup
	conns := make([]*fakeConn, 50)
	for i := range conns {
		conns[i] = &fakeConn{}
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			registry.RegisterChat("chn_math", c)
			registry.BroadcastChat("chn_math", "ping")
		}(conns[i])
	}
	wg.Wait()

	assert.Equal(t, len(conns), registry.ChatSubscribers("chn_math"))

	registry.BroadcastChat("chn_math", "final")
	for _, c := range conns {
		assert.GreaterOrEqual(t, c.received(), 1)
	}
}
