// Package session implements the Splunk Session Pool: lazy, single-flight
// creation of authenticated Splunk sessions keyed by SplunkConfig
// fingerprint, a background reaper that closes sessions idle past a
// configurable TTL, and Prometheus instrumentation for pool occupancy.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/splunk"
)

// DefaultIdleTTL is how long a session may sit unused before the reaper
// closes it, absent an explicit override.
const DefaultIdleTTL = 10 * time.Minute

// Dialer opens a new, authenticated Splunk client for cfg. Production
// code uses splunk.NewClient + Client.Authenticate; tests substitute a
// fake to avoid real network calls.
type Dialer func(ctx context.Context, cfg config.SplunkConfig) (*splunk.Client, error)

// DefaultDialer authenticates against a real Splunk instance.
func DefaultDialer(ctx context.Context, cfg config.SplunkConfig) (*splunk.Client, error) {
	c, err := splunk.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Session is a handle on an authenticated Splunk client plus the
// bookkeeping the pool needs to reap it. A Session is only ever reused
// for the exact SplunkConfig fingerprint it was opened for.
type Session struct {
	Fingerprint string
	Client      *splunk.Client

	mu       sync.Mutex
	lastUsed time.Time
	healthy  bool
}

func newSession(fingerprint string, client *splunk.Client) *Session {
	return &Session{
		Fingerprint: fingerprint,
		Client:      client,
		lastUsed:    time.Now(),
		healthy:     true,
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Pool caches Sessions by SplunkConfig fingerprint and guarantees exactly
// one authentication handshake per fingerprint even under concurrent
// acquires for it.
type Pool struct {
	dialer  Dialer
	idleTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	flight singleflight.Group

	metrics poolMetrics

	stopOnce sync.Once
	stopCh   chan struct{}
}

type poolMetrics struct {
	liveSessions prometheus.Gauge
	handshakes   prometheus.Counter
	reaped       prometheus.Counter
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithIdleTTL overrides DefaultIdleTTL.
func WithIdleTTL(ttl time.Duration) Option {
	return func(p *Pool) { p.idleTTL = ttl }
}

// WithDialer overrides DefaultDialer, primarily for tests.
func WithDialer(d Dialer) Option {
	return func(p *Pool) { p.dialer = d }
}

// WithRegisterer registers the pool's Prometheus metrics on reg instead
// of the default registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Pool) {
		p.metrics = newPoolMetrics(reg)
	}
}

// NewPool constructs a Pool and starts its background reaper. Callers
// must call Close when finished to stop the reaper goroutine.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		dialer:   DefaultDialer,
		idleTTL:  DefaultIdleTTL,
		sessions: make(map[string]*Session),
		metrics:  newPoolMetrics(prometheus.DefaultRegisterer),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.reapLoop()
	return p
}

func newPoolMetrics(reg prometheus.Registerer) poolMetrics {
	m := poolMetrics{
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "splunk_mcp_session_pool_live_sessions",
			Help: "Number of cached Splunk sessions currently held by the pool.",
		}),
		handshakes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splunk_mcp_session_pool_handshakes_total",
			Help: "Number of Splunk authentication handshakes performed.",
		}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splunk_mcp_session_pool_reaped_total",
			Help: "Number of sessions closed by the idle reaper.",
		}),
	}
	if reg != nil {
		// Registration is best-effort: a second pool in the same process
		// (as happens in tests) would otherwise panic on duplicate
		// registration.
		_ = reg.Register(m.liveSessions)
		_ = reg.Register(m.handshakes)
		_ = reg.Register(m.reaped)
	}
	return m
}

// Acquire returns a cached Session matching cfg's fingerprint, opening a
// new one if none exists. Concurrent acquires for the same fingerprint
// share one authentication handshake.
func (p *Pool) Acquire(ctx context.Context, cfg config.SplunkConfig) (*Session, error) {
	if !cfg.Usable() {
		return nil, splunkerrors.NewConfigMissingError("splunk config is not usable", nil)
	}
	fp := cfg.Fingerprint()

	p.mu.RLock()
	if sess, ok := p.sessions[fp]; ok {
		p.mu.RUnlock()
		sess.touch()
		return sess, nil
	}
	p.mu.RUnlock()

	result, err, _ := p.flight.Do(fp, func() (any, error) {
		// Re-check under the single-flight in case a racer finished
		// while we were waiting to enter Do.
		p.mu.RLock()
		if sess, ok := p.sessions[fp]; ok {
			p.mu.RUnlock()
			return sess, nil
		}
		p.mu.RUnlock()

		client, err := p.dialer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.metrics.handshakes.Inc()

		sess := newSession(fp, client)
		p.mu.Lock()
		p.sessions[fp] = sess
		p.mu.Unlock()
		p.metrics.liveSessions.Set(float64(p.len()))

		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	sess := result.(*Session)
	sess.touch()
	return sess, nil
}

// Release marks session as last-used now. Sessions are never closed
// eagerly on release; only the reaper closes idle sessions.
func (p *Pool) Release(sess *Session) {
	if sess == nil {
		return
	}
	sess.touch()
}

func (p *Pool) len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

// Live returns the number of sessions currently cached, for diagnostics
// and tests.
func (p *Pool) Live() int {
	return p.len()
}

func (p *Pool) reapLoop() {
	interval := p.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.reapOnce(time.Now())
		case <-p.stopCh:
			return
		}
	}
}

func (p *Pool) reapOnce(now time.Time) {
	var expired []string
	p.mu.RLock()
	for fp, sess := range p.sessions {
		if now.Sub(sess.idleSince()) >= p.idleTTL {
			expired = append(expired, fp)
		}
	}
	p.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	p.mu.Lock()
	for _, fp := range expired {
		delete(p.sessions, fp)
	}
	p.mu.Unlock()

	for range expired {
		p.metrics.reaped.Inc()
	}
	p.metrics.liveSessions.Set(float64(p.len()))
	logger.Infow("reaped idle splunk sessions", "count", len(expired))
}

// Close stops the background reaper. It does not close any cached
// Splunk clients; the Splunk management API has no persistent
// connection to tear down beyond the process's HTTP transport.
func (p *Pool) Close() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}
