package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// SQLSTATE-коды и классы, которые различает шлюз.
const (
	pgClassIntegrityConstraint = "23"
	pgClassConnectionException = "08"
	pgClassInsufficientRes     = "53"
	pgCodeAdminShutdown        = "57P01"
	pgCodeCrashShutdown        = "57P02"
	pgCodeCannotConnectNow     = "57P03"
)

// classify переводит ошибку драйвера в доменную категорию, сохраняя исходную причину.
// Уже классифицированные ошибки возвращаются без изменений.
func classify(op string, err error, write bool) error {
	if err == nil {
		return nil
	}
	if alreadyClassified(err) {
		return err
	}

	switch {
	case isUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	case isConstraintViolation(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConstraintViolation, err)
	case write:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func alreadyClassified(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrNestedTransaction,
		domain.ErrStorageUnavailable,
		domain.ErrConstraintViolation,
		domain.ErrWriteFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, pgClassConnectionException),
			strings.HasPrefix(pgErr.Code, pgClassInsufficientRes),
			pgErr.Code == pgCodeAdminShutdown,
			pgErr.Code == pgCodeCrashShutdown,
			pgErr.Code == pgCodeCannotConnectNow:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return pgconn.SafeToRetry(err)
}

func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, pgClassIntegrityConstraint)
	}
	return false
}
