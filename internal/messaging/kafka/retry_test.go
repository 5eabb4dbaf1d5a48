package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

type flakyPublisher struct {
	failures int
	err      error
	calls    int
}

func (f *flakyPublisher) PublishShippingAddressChanged(context.Context, domain.ShippingAddressChanged) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Positive(t, cfg.InitialDelay)
	assert.Positive(t, cfg.MaxDelay)
	assert.Greater(t, cfg.BackoffFactor, 1.0)
}

func TestRetryingPublisher(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}
	event := domain.ShippingAddressChanged{OrderID: 7, CustomerID: 1, AddressID: 3}

	t.Run("retry then success", func(t *testing.T) {
		next := &flakyPublisher{failures: 2, err: errors.New("broker down")}
		p := NewRetryingPublisher(next, cfg, nil, log.New().WithField("test", "retry"))
		p.sleep = noSleep

		require.NoError(t, p.PublishShippingAddressChanged(context.Background(), event))
		assert.Equal(t, 3, next.calls)
	})

	t.Run("exhausted retries", func(t *testing.T) {
		boom := errors.New("broker down")
		next := &flakyPublisher{failures: 10, err: boom}
		p := NewRetryingPublisher(next, cfg, nil, nil)
		p.sleep = noSleep

		err := p.PublishShippingAddressChanged(context.Background(), event)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, cfg.MaxAttempts, next.calls)
	})

	t.Run("canceled context is not retried", func(t *testing.T) {
		next := &flakyPublisher{failures: 10, err: context.Canceled}
		p := NewRetryingPublisher(next, cfg, nil, nil)
		p.sleep = noSleep

		require.ErrorIs(t, p.PublishShippingAddressChanged(context.Background(), event), context.Canceled)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("context canceled while waiting", func(t *testing.T) {
		next := &flakyPublisher{failures: 10, err: errors.New("broker down")}
		p := NewRetryingPublisher(next, RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.ErrorIs(t, p.PublishShippingAddressChanged(ctx, event), context.Canceled)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("zero attempts means one", func(t *testing.T) {
		next := &flakyPublisher{}
		p := NewRetryingPublisher(next, RetryConfig{}, nil, nil)

		require.NoError(t, p.PublishShippingAddressChanged(context.Background(), event))
		assert.Equal(t, 1, next.calls)
	})
}

func TestRetryingPublisher_OpenBreakerStopsRetries(t *testing.T) {
	next := &flakyPublisher{failures: 10, err: errors.New("broker down")}
	breaker := NewCircuitBreaker(1, time.Hour, nil)
	p := NewRetryingPublisher(next, RetryConfig{MaxAttempts: 5}, breaker, nil)
	p.sleep = noSleep

	err := p.PublishShippingAddressChanged(context.Background(), domain.ShippingAddressChanged{OrderID: 1})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, CircuitOpen, breaker.State())
}

func TestCircuitBreakerExecute(t *testing.T) {
	cb := NewCircuitBreaker(2, 20*time.Millisecond, nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	boom := errors.New("boom")

	require.NoError(t, cb.Execute("ok", func() error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())

	require.ErrorIs(t, cb.Execute("fail-1", func() error { return boom }), boom)
	assert.Equal(t, CircuitClosed, cb.State())
	require.ErrorIs(t, cb.Execute("fail-2", func() error { return boom }), boom)
	assert.Equal(t, CircuitOpen, cb.State())

	called := false
	err := cb.Execute("blocked", func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	// После таймаута breaker пропускает пробный вызов.
	now = now.Add(time.Second)
	require.NoError(t, cb.Execute("half-open-success", func() error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())

	require.ErrorIs(t, cb.Execute("fail-3", func() error { return boom }), boom)
	require.ErrorIs(t, cb.Execute("fail-4", func() error { return boom }), boom)
	now = now.Add(time.Second)
	require.ErrorIs(t, cb.Execute("half-open-fail", func() error { return boom }), boom)
	assert.Equal(t, CircuitOpen, cb.State())
}
