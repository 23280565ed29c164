package repository

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
)

// RetryPolicy ограничение числа попыток и шаг линейной задержки
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как не подлежащую повтору, даже если она похожа на сбой сессии
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

var staleSignatures = []string{
	"prepared statement",
	"cached plan must not change result type",
	"conn closed",
	"connection reset",
	"broken pipe",
	"bad connection",
	"unexpected eof",
}

// IsStaleSession распознает ошибки, после которых сессию нужно пересоздать
func IsStaleSession(err error) bool {
	if err == nil {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	var domain *apperr.Error
	if errors.As(err, &domain) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "26000": // invalid_sql_statement_name
			return true
		case "0A000": // feature_not_supported
			return strings.Contains(pgErr.Message, "cached plan must not change result type")
		case "57P01", "57P02", "57P03": // admin_shutdown, crash_shutdown, cannot_connect_now
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}

	if pgconn.SafeToRetry(err) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range staleSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// retry выполняет op до policy.Attempts раз. Перед каждым повтором вызывается
// onRetry (переподключение), затем выдерживается задержка attempt*Backoff.
func retry(ctx context.Context, policy RetryPolicy, op func(ctx context.Context) error, onRetry func(ctx context.Context, attempt int, cause error)) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return apperr.Wrap(apperr.KindTransientStorage, apperr.ErrStorageUnavailable.Code, apperr.ErrStorageUnavailable.Message, err)
		}
		if !IsStaleSession(err) {
			return err
		}

		lastErr = err
		if attempt == attempts {
			break
		}
		onRetry(ctx, attempt, err)

		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.KindTransientStorage, apperr.ErrStorageUnavailable.Code, apperr.ErrStorageUnavailable.Message, ctx.Err())
		case <-time.After(time.Duration(attempt) * policy.Backoff):
		}
	}

	return apperr.Wrap(apperr.KindInternal, apperr.ErrRetriesExhausted.Code, apperr.ErrRetriesExhausted.Message, lastErr)
}
