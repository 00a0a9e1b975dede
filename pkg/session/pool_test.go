package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/splunk"
)

func newTestPool(t *testing.T, dialer Dialer, opts ...Option) *Pool {
	t.Helper()
	allOpts := append([]Option{
		WithDialer(dialer),
		WithRegisterer(prometheus.NewRegistry()),
		WithIdleTTL(50 * time.Millisecond),
	}, opts...)
	p := NewPool(allOpts...)
	t.Cleanup(p.Close)
	return p
}

func fakeDialer(handshakes *int64) Dialer {
	return func(_ context.Context, cfg config.SplunkConfig) (*splunk.Client, error) {
		atomic.AddInt64(handshakes, 1)
		return splunk.NewClient(cfg)
	}
}

func usableConfig(host string) config.SplunkConfig {
	return config.SplunkConfig{Host: host, Token: "tok"}
}

func TestPool_AcquireReturnsUsableSession(t *testing.T) {
	t.Parallel()
	var handshakes int64
	p := newTestPool(t, fakeDialer(&handshakes))

	sess, err := p.Acquire(context.Background(), usableConfig("a.example"))
	require.NoError(t, err)
	assert.NotNil(t, sess.Client)
	assert.Equal(t, int64(1), atomic.LoadInt64(&handshakes))
	assert.Equal(t, 1, p.Live())
}

func TestPool_AcquireRejectsUnusableConfig(t *testing.T) {
	t.Parallel()
	var handshakes int64
	p := newTestPool(t, fakeDialer(&handshakes))

	_, err := p.Acquire(context.Background(), config.SplunkConfig{})
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.ConfigMissing, typed.Type)
}

func TestPool_SameFingerprintReusesSession(t *testing.T) {
	t.Parallel()
	var handshakes int64
	p := newTestPool(t, fakeDialer(&handshakes))

	cfg := usableConfig("a.example")
	first, err := p.Acquire(context.Background(), cfg)
	require.NoError(t, err)
	second, err := p.Acquire(context.Background(), cfg)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&handshakes))
}

func TestPool_DistinctFingerprintsGetDistinctSessions(t *testing.T) {
	t.Parallel()
	var handshakes int64
	p := newTestPool(t, fakeDialer(&handshakes))

	a, err := p.Acquire(context.Background(), usableConfig("a.example"))
	require.NoError(t, err)
	b, err := p.Acquire(context.Background(), usableConfig("b.example"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, int64(2), atomic.LoadInt64(&handshakes))
	assert.Equal(t, 2, p.Live())
}

func TestPool_ConcurrentAcquireSingleFlights(t *testing.T) {
	t.Parallel()
	var handshakes int64
	block := make(chan struct{})
	dialer := func(_ context.Context, cfg config.SplunkConfig) (*splunk.Client, error) {
		atomic.AddInt64(&handshakes, 1)
		<-block
		return splunk.NewClient(cfg)
	}
	p := newTestPool(t, dialer)

	cfg := usableConfig("race.example")
	const n = 20
	var wg sync.WaitGroup
	sessions := make([]*Session, n)
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			sessions[i], errs[i] = p.Acquire(context.Background(), cfg)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(block)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, sessions[0], sessions[i])
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&handshakes))
}

func TestPool_DialerErrorPropagates(t *testing.T) {
	t.Parallel()
	wantErr := splunkerrors.NewAuthFailedError("nope", nil)
	p := newTestPool(t, func(context.Context, config.SplunkConfig) (*splunk.Client, error) {
		return nil, wantErr
	})

	_, err := p.Acquire(context.Background(), usableConfig("a.example"))
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.AuthFailed, typed.Type)
	assert.Equal(t, 0, p.Live())
}

func TestPool_ReapOnceClosesIdleSessions(t *testing.T) {
	t.Parallel()
	var handshakes int64
	p := newTestPool(t, fakeDialer(&handshakes))

	sess, err := p.Acquire(context.Background(), usableConfig("a.example"))
	require.NoError(t, err)
	require.NotNil(t, sess)

	p.reapOnce(time.Now().Add(time.Hour))
	assert.Equal(t, 0, p.Live())
}

func TestPool_ReleaseTouchesLastUsed(t *testing.T) {
	t.Parallel()
	var handshakes int64
	p := newTestPool(t, fakeDialer(&handshakes))

	sess, err := p.Acquire(context.Background(), usableConfig("a.example"))
	require.NoError(t, err)

	before := sess.idleSince()
	time.Sleep(2 * time.Millisecond)
	p.Release(sess)
	assert.True(t, sess.idleSince().After(before))
}
