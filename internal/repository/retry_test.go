package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStaleSession(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"missing prepared statement", &pgconn.PgError{Code: "26000", Message: `prepared statement "stmtcache_1" does not exist`}, true},
		{"cached plan", &pgconn.PgError{Code: "0A000", Message: "cached plan must not change result type"}, true},
		{"other feature not supported", &pgconn.PgError{Code: "0A000", Message: "something else"}, false},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"wrapped eof", fmt.Errorf("query: %w", io.ErrUnexpectedEOF), true},
		{"conn closed text", errors.New("conn closed"), true},
		{"plain error", errors.New("syntax error at or near"), false},
		{"domain error", apperr.ErrEmergencyNotFound, false},
		{"permanent stale", Permanent(&pgconn.PgError{Code: "26000"}), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsStaleSession(tc.err))
		})
	}
}

func TestRetry_SucceedsAfterStaleSession(t *testing.T) {
	calls, reconnects := 0, 0
	op := func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "26000", Message: "prepared statement does not exist"}
		}
		return nil
	}

	err := retry(context.Background(), RetryPolicy{Attempts: 2, Backoff: time.Millisecond}, op,
		func(ctx context.Context, attempt int, cause error) { reconnects++ })

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, reconnects)
}

func TestRetry_NonStaleErrorIsNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("syntax error")
	err := retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond},
		func(ctx context.Context) error { calls++; return boom },
		func(ctx context.Context, attempt int, cause error) { t.Fatal("must not reconnect") })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_DomainErrorPassesThrough(t *testing.T) {
	err := retry(context.Background(), RetryPolicy{Attempts: 2, Backoff: time.Millisecond},
		func(ctx context.Context) error { return apperr.ErrActiveEmergencyExists },
		func(ctx context.Context, attempt int, cause error) { t.Fatal("must not reconnect") })

	assert.ErrorIs(t, err, apperr.ErrActiveEmergencyExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRetry_ExhaustedBecomesInternal(t *testing.T) {
	calls, reconnects := 0, 0
	err := retry(context.Background(), RetryPolicy{Attempts: 2, Backoff: time.Millisecond},
		func(ctx context.Context) error { calls++; return errors.New("conn closed") },
		func(ctx context.Context, attempt int, cause error) { reconnects++ })

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, reconnects)
	assert.ErrorIs(t, err, apperr.ErrRetriesExhausted)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestRetry_DeadlineIsTransient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := retry(ctx, RetryPolicy{Attempts: 2, Backoff: time.Millisecond},
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		func(ctx context.Context, attempt int, cause error) {})

	assert.Equal(t, apperr.KindTransientStorage, apperr.KindOf(err))
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
}

func TestRetry_BackoffIsIncremental(t *testing.T) {
	var stamps []time.Time
	_ = retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: 20 * time.Millisecond},
		func(ctx context.Context) error {
			stamps = append(stamps, time.Now())
			return errors.New("connection reset by peer")
		},
		func(ctx context.Context, attempt int, cause error) {})

	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 40*time.Millisecond)
}
