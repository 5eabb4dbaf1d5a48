package health

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// DefaultStorageTimeout ограничивает одну проверку хранилища.
const DefaultStorageTimeout = 2 * time.Second

// Pinger — хранилище, умеющее проверять подключение.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageChecker проверяет хранилище через Ping.
//
// Временная недоступность (domain.ErrStorageUnavailable) считается
// unhealthy, прочие ошибки только деградируют статус.
type StorageChecker struct {
	name    string
	pinger  Pinger
	timeout time.Duration
}

// NewStorageChecker создаёт проверку хранилища; timeout <= 0 заменяется значением по умолчанию.
func NewStorageChecker(name string, pinger Pinger, timeout time.Duration) *StorageChecker {
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	return &StorageChecker{name: name, pinger: pinger, timeout: timeout}
}

// Check выполняет Ping с собственным таймаутом.
func (c *StorageChecker) Check(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.pinger.Ping(ctx)
	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err == nil {
		return check
	}

	check.Message = err.Error()
	if domain.IsRetryable(err) {
		check.Status = StatusUnhealthy
	} else {
		check.Status = StatusDegraded
	}
	return check
}
