package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
)

// ClockInRequest holds the data for a remote clock-in creation.
type ClockInRequest struct {
	UserID     string                 `json:"user_id"`
	ClockInAt  time.Time              `json:"clock_in_at"`
	Location   *domain.LocationSample `json:"location,omitempty"`
	Validation *domain.GeofenceResult `json:"validation,omitempty"`
}

// ClockOutRequest holds the data applied to an existing remote entry.
type ClockOutRequest struct {
	ClockOutAt time.Time              `json:"clock_out_at"`
	BreakMin   int                    `json:"break_min"`
	Location   *domain.LocationSample `json:"location,omitempty"`
	Note       string                 `json:"note,omitempty"`
}

// Client provides access to the remote time store. The store is a
// write target only: local state always wins, so the client exposes
// mutations and a reachability probe, never reads.
type Client interface {
	// CreateClockIn creates a remote entry and returns its remote ID.
	CreateClockIn(ctx context.Context, req ClockInRequest) (string, error)

	// ApplyClockOut closes the remote entry identified by remoteID.
	ApplyClockOut(ctx context.Context, remoteID string, req ClockOutRequest) error

	// Ping checks whether the time store is reachable.
	Ping(ctx context.Context) bool
}

// httpClient implements Client over the time store HTTP API.
type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewHTTPClient creates a Client that talks to the time store API.
func NewHTTPClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// createResponse is the JSON body returned by POST /v1/time-entries.
type createResponse struct {
	ID string `json:"id"`
}

func (c *httpClient) CreateClockIn(ctx context.Context, req ClockInRequest) (string, error) {
	var resp createResponse
	err := c.call(ctx, "create_clock_in", http.MethodPost, "/v1/time-entries", req, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: store returned empty entry id", ErrRejected)
	}
	return resp.ID, nil
}

func (c *httpClient) ApplyClockOut(ctx context.Context, remoteID string, req ClockOutRequest) error {
	path := "/v1/time-entries/" + remoteID + "/clock-out"
	return c.call(ctx, "apply_clock_out", http.MethodPost, path, req, nil)
}

func (c *httpClient) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/v1/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// call performs one mutation with the configured timeout and bounded
// retries. Rejections and context expiry are never retried.
func (c *httpClient) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		err := c.doRequest(ctx, method, path, body, out)
		if err == nil {
			c.observer.OnCallComplete(CallEvent{
				Operation: op,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return nil
		}
		lastErr = err

		if errors.Is(err, ErrRejected) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	classified := c.classify(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Operation: op,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(classified),
	})
	return classified
}

func (c *httpClient) doRequest(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
	case httpResp.StatusCode >= 400 && httpResp.StatusCode < 500:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, httpResp.StatusCode, string(respBody))
	default:
		return fmt.Errorf("store returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// classify maps a raw transport error onto the package error taxonomy.
func (c *httpClient) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRejected) {
		return err
	}
	if ctx.Err() != nil {
		return ErrTimeout
	}
	if isConnectionError(err) {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
