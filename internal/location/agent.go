package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
)

// Config holds configuration for the local location agent.
type Config struct {
	Endpoint  string
	TimeoutMs int
}

// DefaultConfig returns a Config pointing at the default agent port.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8125",
		TimeoutMs: 8000,
	}
}

// LoadConfig reads agent configuration from environment variables.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("TIMECLOCK_LOCATION_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TIMECLOCK_LOCATION_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}

// AgentProvider obtains fixes from a local location agent over HTTP.
// The agent owns the platform geolocation APIs and permission prompts;
// this client only relays its answers.
type AgentProvider struct {
	cfg  Config
	http *http.Client
}

// NewAgentProvider creates a provider backed by the local agent.
func NewAgentProvider(cfg Config) *AgentProvider {
	return &AgentProvider{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 2 * time.Second,
				}).DialContext,
			},
		},
	}
}

// agentFix is the JSON body returned by GET /v1/location.
type agentFix struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	Address        string   `json:"address,omitempty"`
}

func (p *AgentProvider) CurrentSample(ctx context.Context) (*domain.LocationSample, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint+"/v1/location", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, ErrPermissionDenied
	default:
		return nil, fmt.Errorf("%w: agent returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var fix agentFix
	if err := json.Unmarshal(body, &fix); err != nil {
		return nil, fmt.Errorf("%w: decoding fix: %v", ErrUnavailable, err)
	}

	return &domain.LocationSample{
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		AccuracyMeters: fix.AccuracyMeters,
		CapturedAt:     time.Now().UTC(),
		Address:        fix.Address,
	}, nil
}

// AgentTracker drives the agent's background tracking mode.
type AgentTracker struct {
	cfg  Config
	http *http.Client
}

// NewAgentTracker creates a BackgroundTracker backed by the local agent.
func NewAgentTracker(cfg Config) *AgentTracker {
	return &AgentTracker{
		cfg:  cfg,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

func (t *AgentTracker) Start(ctx context.Context) bool {
	return t.post(ctx, "/v1/tracking/start")
}

// Stop is unconditional: errors are swallowed so a failed or refused
// Start never leaves the stop side unexecuted.
func (t *AgentTracker) Stop(ctx context.Context) {
	t.post(ctx, "/v1/tracking/stop")
}

func (t *AgentTracker) post(ctx context.Context, path string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint+path, nil)
	if err != nil {
		return false
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
