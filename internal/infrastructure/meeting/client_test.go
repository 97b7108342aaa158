package meeting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"classhub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Meeting.BaseURL = baseURL
	cfg.Meeting.APIKey = "test-key"
	cfg.Meeting.RequestTimeout = 2 * time.Second
	cfg.Meeting.MaxRetries = 2

	client := NewClient(cfg, zap.NewNop().Sugar()).(*Client)
	// Keep test retries fast.
	client.retryCfg.InitialDelay = time.Millisecond
	client.retryCfg.MaxDelay = time.Millisecond
	return client
}

func TestClientProvisioningRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		switch {
		case r.URL.Path == "/api/v1/token":
			w.Write([]byte(`{"token":"tok-123"}`))
		case r.URL.Path == "/api/v1/meetings" && r.Method == http.MethodPost:
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			w.Write([]byte(`{"id":"meet-7"}`))
		case r.URL.Path == "/api/v1/meetings/meet-7":
			w.Write([]byte(`{"disabled":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	token, err := client.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	meetingID, err := client.CreateMeeting(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "meet-7", meetingID)

	status, err := client.ValidateMeeting(ctx, token, meetingID)
	require.NoError(t, err)
	assert.False(t, status.Disabled)
}

func TestClientReportsDisabledMeeting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disabled":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	status, err := client.ValidateMeeting(context.Background(), "tok", "meet-1")
	require.NoError(t, err)
	assert.True(t, status.Disabled)
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"token":"tok-after-retry"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	token, err := client.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-after-retry", token)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientFailsAfterRetryBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetToken(context.Background())
	assert.Error(t, err)
}
