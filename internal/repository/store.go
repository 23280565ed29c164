package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/pkg/postgres"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Querier общий набор методов пула и транзакции pgx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnectFunc открывает новый пул; подменяется в тестах
type ConnectFunc func(ctx context.Context) (*pgxpool.Pool, error)

const defaultConnectTimeout = 5 * time.Second

// Store владеет долгоживущим пулом pgx: периодически проверяет его и пересоздает
// после сбоев сессии. Все многошаговые записи идут через RunWithRetry или InTx.
type Store struct {
	mu   sync.RWMutex
	pool *pgxpool.Pool
	// gen растет при каждой замене пула
	gen        uint64
	reconnects singleflight.Group

	connect        ConnectFunc
	policy         RetryPolicy
	opTimeout      time.Duration
	healthInterval time.Duration
	healthy        atomic.Bool

	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewStore подключается к основной БД и возвращает готовый Store
func NewStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) (*Store, error) {
	connect := func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.NewPostgresDB(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: int32(cfg.DBMaxConns)})
	}
	pool, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	s := &Store{
		pool:           pool,
		connect:        connect,
		policy:         RetryPolicy{Attempts: cfg.DBRetryAttempts, Backoff: cfg.DBRetryBackoff},
		opTimeout:      cfg.DBOpTimeout,
		healthInterval: cfg.DBHealthInterval,
		logger:         logger,
		metrics:        m,
	}
	s.healthy.Store(true)
	return s, nil
}

// Pool возвращает текущий пул; после Reconnect это уже другой объект
func (s *Store) Pool() *pgxpool.Pool {
	pool, _ := s.current()
	return pool
}

func (s *Store) current() (*pgxpool.Pool, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool, s.gen
}

// Healthy результат последней проверки соединения
func (s *Store) Healthy() bool {
	return s.healthy.Load()
}

// Probe легкий запрос для проверки соединения
func (s *Store) Probe(ctx context.Context) error {
	return probe(ctx, s.Pool())
}

func probe(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := pool.Exec(ctx, "SELECT 1")
	return err
}

// Reconnect создает новый пул и заменяет им текущий
func (s *Store) Reconnect(ctx context.Context) error {
	_, gen := s.current()
	return s.reconnectFrom(ctx, gen)
}

// reconnectFrom заменяет пул поколения seen. Одновременные вызовы ждут одно общее
// подключение; если пул уже заменен после сбоя, вызов ничего не делает.
// Старый пул закрывается в фоне, так как Close ждет возврата всех занятых соединений.
func (s *Store) reconnectFrom(ctx context.Context, seen uint64) error {
	_, err, _ := s.reconnects.Do("reconnect", func() (any, error) {
		if _, gen := s.current(); gen != seen {
			return nil, nil
		}

		// результат разделяют все ожидающие, поэтому отмена одного из них не должна его прерывать
		timeout := s.opTimeout
		if timeout <= 0 {
			timeout = defaultConnectTimeout
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		fresh, err := s.connect(cctx)
		if err != nil {
			return nil, fmt.Errorf("reconnect: %w", err)
		}

		s.mu.Lock()
		old := s.pool
		s.pool = fresh
		s.gen++
		s.mu.Unlock()

		s.metrics.ObserveReconnect()
		s.logger.WithField("generation", seen+1).Warn("Primary database pool recreated")
		if old != nil {
			go old.Close()
		}
		return nil, nil
	})
	return err
}

// StartHealthCheck запускает периодическую проверку: при сбое - переподключение и одна повторная проверка
func (s *Store) StartHealthCheck(ctx context.Context) {
	interval := s.healthInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	s.logger.WithField("interval", interval).Info("Starting database health check")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Stopping database health check.")
				return
			case <-ticker.C:
				s.checkOnce(ctx)
			}
		}
	}()
}

func (s *Store) checkOnce(ctx context.Context) {
	pool, gen := s.current()
	err := probe(ctx, pool)
	if err == nil {
		s.healthy.Store(true)
		return
	}

	log := s.logger.WithError(err)
	log.Warn("Database health probe failed, reconnecting")
	if rerr := s.reconnectFrom(ctx, gen); rerr != nil {
		log.WithField("reconnect_error", rerr.Error()).Error("Database reconnect failed")
	}
	if err := s.Probe(ctx); err != nil {
		s.healthy.Store(false)
		s.logger.WithError(err).Error("Database still unhealthy after reconnect")
		return
	}
	s.healthy.Store(true)
	s.logger.Info("Database connection restored")
}

// RunWithRetry выполняет единицу работы. Ошибки устаревшей сессии приводят к переподключению
// и повтору в пределах политики; прочие ошибки возвращаются сразу.
func (s *Store) RunWithRetry(ctx context.Context, op string, fn func(ctx context.Context, q Querier) error) error {
	return s.runWithRetry(ctx, op, func(ctx context.Context, pool *pgxpool.Pool) error {
		return fn(ctx, pool)
	})
}

// runWithRetry запоминает поколение пула каждой попытки: пересоздается только тот пул,
// на котором случился сбой.
func (s *Store) runWithRetry(ctx context.Context, op string, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	if s.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	var used uint64
	return retry(ctx, s.policy,
		func(ctx context.Context) error {
			pool, gen := s.current()
			used = gen
			return fn(ctx, pool)
		},
		func(ctx context.Context, attempt int, cause error) {
			s.metrics.ObserveRetry(op)
			s.logger.WithFields(logrus.Fields{
				"operation": op,
				"attempt":   attempt,
			}).WithError(cause).Warn("Stale database session, reconnecting before retry")
			if err := s.reconnectFrom(ctx, used); err != nil {
				s.logger.WithError(err).WithField("operation", op).Error("Reconnect before retry failed")
			}
		},
	)
}

// InTx выполняет fn в одной транзакции с той же политикой повторов.
// Сбой на COMMIT не повторяется: исход транзакции неизвестен.
func (s *Store) InTx(ctx context.Context, op string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return s.runWithRetry(ctx, op, func(ctx context.Context, pool *pgxpool.Pool) error {
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin %s: %w", op, err)
		}
		defer func() {
			if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
				s.logger.WithError(rerr).WithField("operation", op).Debug("Rollback failed")
			}
		}()

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return Permanent(fmt.Errorf("commit %s: %w", op, err))
		}
		return nil
	})
}

// Close закрывает текущий пул
func (s *Store) Close() {
	s.Pool().Close()
}
