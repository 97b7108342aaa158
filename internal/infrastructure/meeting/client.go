package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"classhub/internal/core/ports"
	"classhub/pkg/circuitbreaker"
	"classhub/pkg/config"
	"classhub/pkg/retry"

	"go.uber.org/zap"
)

// Client talks to the external video-meeting provider over HTTP. Every
// call is retried with backoff and guarded by a circuit breaker so a
// flapping provider cannot stall channel creation indefinitely.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryCfg   retry.Config
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.SugaredLogger
}

func NewClient(cfg *config.Config, logger *zap.SugaredLogger) ports.MeetingProvider {
	timeout := cfg.Meeting.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retryCfg := retry.DefaultConfig()
	if cfg.Meeting.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.Meeting.MaxRetries
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.Meeting.BaseURL, "/"),
		apiKey:     cfg.Meeting.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
		breaker:    circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:     logger,
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createMeetingResponse struct {
	ID string `json:"id"`
}

type meetingStateResponse struct {
	Disabled bool `json:"disabled"`
}

func (c *Client) GetToken(ctx context.Context) (string, error) {
	var resp tokenResponse
	err := c.call(ctx, http.MethodGet, "/api/v1/token", "", &resp)
	if err != nil {
		return "", fmt.Errorf("failed to obtain meeting token: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("meeting provider returned an empty token")
	}
	return resp.Token, nil
}

func (c *Client) CreateMeeting(ctx context.Context, token string) (string, error) {
	var resp createMeetingResponse
	err := c.call(ctx, http.MethodPost, "/api/v1/meetings", token, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to create meeting: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("meeting provider returned an empty meeting id")
	}
	return resp.ID, nil
}

func (c *Client) ValidateMeeting(ctx context.Context, token, meetingID string) (ports.MeetingStatus, error) {
	var resp meetingStateResponse
	err := c.call(ctx, http.MethodGet, "/api/v1/meetings/"+meetingID, token, &resp)
	if err != nil {
		return ports.MeetingStatus{}, fmt.Errorf("failed to validate meeting: %w", err)
	}
	return ports.MeetingStatus{Disabled: resp.Disabled}, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, out interface{}) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		return c.breaker.Execute(func() error {
			return c.doRequest(ctx, method, path, token, out)
		})
	})
}

func (c *Client) doRequest(ctx context.Context, method, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("meeting provider request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warnw("meeting provider returned non-2xx status",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("provider responded with status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}
