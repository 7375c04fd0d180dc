package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultHealthTimeout bounds a single health probe.
	DefaultHealthTimeout = 30 * time.Second
	// DefaultAliveTimeout bounds a liveness probe. Liveness only asks
	// whether the endpoint answers at all, so it gets a short leash.
	DefaultAliveTimeout = 5 * time.Second
	// DefaultFleetLimit bounds concurrent probes in a fleet check.
	DefaultFleetLimit = 8

	maxBodyBytes = 64 * 1024
)

// Prober issues outbound HTTP checks against catalog resources.
type Prober struct {
	client        *http.Client
	healthTimeout time.Duration
	aliveTimeout  time.Duration
	fleetLimit    int
}

// Option tweaks a Prober at construction time.
type Option func(*Prober)

// WithHealthTimeout overrides the per-probe health timeout.
func WithHealthTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.healthTimeout = d
		}
	}
}

// WithAliveTimeout overrides the per-probe liveness timeout.
func WithAliveTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.aliveTimeout = d
		}
	}
}

// WithFleetLimit overrides the fleet concurrency bound.
func WithFleetLimit(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.fleetLimit = n
		}
	}
}

// WithClient substitutes the HTTP client, mainly for tests.
func WithClient(c *http.Client) Option {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

// New builds a Prober with defaults, then applies options.
func New(opts ...Option) *Prober {
	p := &Prober{
		client:        &http.Client{},
		healthTimeout: DefaultHealthTimeout,
		aliveTimeout:  DefaultAliveTimeout,
		fleetLimit:    DefaultFleetLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HealthResult is the outcome of one health probe.
type HealthResult struct {
	Healthy    bool   `json:"healthy"`
	StatusCode int    `json:"statusCode,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Health GETs the health endpoint with the given request headers. A non-2xx
// status is classified unhealthy with the code named; transport failure is
// unhealthy with the error named. The caller decides how to surface either.
func (p *Prober) Health(ctx context.Context, url string, headers map[string]string) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, p.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return HealthResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return HealthResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HealthResult{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Error:      fmt.Sprintf("health endpoint returned status %d", resp.StatusCode),
		}
	}
	return HealthResult{Healthy: true, StatusCode: resp.StatusCode, Body: string(body)}
}

// AliveResult is the outcome of one liveness probe. Any HTTP response at all
// counts as alive; only a transport failure means not alive.
type AliveResult struct {
	Alive      bool   `json:"alive"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Alive GETs the liveness endpoint. A refused or timed-out connection is a
// valid monitoring answer, not a probe failure.
func (p *Prober) Alive(ctx context.Context, url string, headers map[string]string) AliveResult {
	ctx, cancel := context.WithTimeout(ctx, p.aliveTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return AliveResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return AliveResult{Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return AliveResult{Alive: true, StatusCode: resp.StatusCode}
}
