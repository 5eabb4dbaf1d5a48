package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// ErrCircuitOpen возвращается, пока circuit breaker не пропускает публикации.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// RetryConfig конфигурация для retry логики.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingPublisher оборачивает EventPublisher повторными попытками с
// экспоненциальной задержкой и circuit breaker.
type RetryingPublisher struct {
	next    domain.EventPublisher
	config  RetryConfig
	breaker *CircuitBreaker
	logger  *log.Entry

	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryingPublisher создаёт публикатор с retry логикой. breaker может быть nil.
func NewRetryingPublisher(next domain.EventPublisher, config RetryConfig, breaker *CircuitBreaker, logger *log.Entry) *RetryingPublisher {
	if logger == nil {
		logger = log.New().WithField("component", "retrying-publisher")
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	return &RetryingPublisher{
		next:    next,
		config:  config,
		breaker: breaker,
		logger:  logger,
		sleep:   sleepContext,
	}
}

func (p *RetryingPublisher) PublishShippingAddressChanged(ctx context.Context, event domain.ShippingAddressChanged) error {
	return p.executeWithRetry(ctx, event.OrderID, func() error {
		if p.breaker == nil {
			return p.next.PublishShippingAddressChanged(ctx, event)
		}
		return p.breaker.Execute("publish", func() error {
			return p.next.PublishShippingAddressChanged(ctx, event)
		})
	})
}

func (p *RetryingPublisher) executeWithRetry(ctx context.Context, orderID int64, fn func() error) error {
	var lastErr error
	delay := p.config.InitialDelay

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				p.logger.WithFields(log.Fields{
					"order_id": orderID,
					"attempt":  attempt,
				}).Info("event published after retry")
			}
			return nil
		}

		lastErr = err

		if !shouldRetry(err) {
			return err
		}

		if attempt < p.config.MaxAttempts {
			p.logger.WithFields(log.Fields{
				"order_id": orderID,
				"attempt":  attempt,
				"delay":    delay,
				"error":    err,
			}).Warn("event publish failed, retrying")

			if err := p.sleep(ctx, delay); err != nil {
				return err
			}

			// Экспоненциальная задержка с ограничением
			delay = time.Duration(float64(delay) * p.config.BackoffFactor)
			if p.config.MaxDelay > 0 && delay > p.config.MaxDelay {
				delay = p.config.MaxDelay
			}
		}
	}

	return fmt.Errorf("publish after %d attempts: %w", p.config.MaxAttempts, lastErr)
}

// shouldRetry не повторяет отмену контекста и открытый breaker.
func shouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrCircuitOpen)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CircuitBreaker простая реализация circuit breaker паттерна.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       CircuitState
	logger      *log.Entry
	now         func() time.Time
}

type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// NewCircuitBreaker создаёт новый circuit breaker.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, logger *log.Entry) *CircuitBreaker {
	if logger == nil {
		logger = log.New().WithField("component", "circuit-breaker")
	}

	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		logger:       logger,
		now:          time.Now,
	}
}

// State возвращает текущее состояние.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute выполняет операцию через circuit breaker.
func (cb *CircuitBreaker) Execute(operation string, fn func() error) error {
	cb.mu.Lock()
	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.logger.WithField("operation", operation).Info("circuit breaker half-open")
		} else {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()

		if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = CircuitOpen
			cb.logger.WithFields(log.Fields{
				"operation": operation,
				"failures":  cb.failures,
			}).Warn("circuit breaker opened")
		}

		return err
	}

	// Успешное выполнение - сбрасываем счётчик
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitClosed
		cb.logger.WithField("operation", operation).Info("circuit breaker closed")
	}
	cb.failures = 0

	return nil
}

var _ domain.EventPublisher = (*RetryingPublisher)(nil)
