package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

const selectEmergency = `
	SELECT
		id,
		type,
		description,
		latitude,
		longitude,
		priority,
		status,
		is_fraud,
		reporter_id,
		responder_id,
		responder_latitude,
		responder_longitude,
		created_at,
		updated_at,
		resolved_at
	FROM emergencies
`

// uniqueActivePerReporter частичный уникальный индекс "один активный вызов на заявителя"
const uniqueActivePerReporter = "emergencies_one_active_per_reporter"

type EmergencyRepository struct {
	store *Store
}

func NewEmergencyRepository(store *Store) *EmergencyRepository {
	return &EmergencyRepository{store: store}
}

func scanEmergency(row pgx.Row) (*models.Emergency, error) {
	var (
		e                models.Emergency
		typ, status      string
		responderID      *uuid.UUID
		respLat, respLon *float64
		resolvedAt       *time.Time
	)
	err := row.Scan(
		&e.ID,
		&typ,
		&e.Description,
		&e.Location.Latitude,
		&e.Location.Longitude,
		&e.Priority,
		&status,
		&e.IsFraud,
		&e.ReporterID,
		&responderID,
		&respLat,
		&respLon,
		&e.CreatedAt,
		&e.UpdatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Type = models.EmergencyType(typ)
	e.Status = models.EmergencyStatus(status)
	e.ResponderID = responderID
	if respLat != nil && respLon != nil {
		e.ResponderLocation = &models.Location{Latitude: *respLat, Longitude: *respLon}
	}
	e.ResolvedAt = resolvedAt
	return &e, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// Create сохраняет новый вызов. Проверка "нет другого активного вызова" и вставка
// выполняются под advisory-блокировкой заявителя; индекс страхует от гонок вне этой функции.
func (r *EmergencyRepository) Create(ctx context.Context, e *models.Emergency) error {
	return r.store.InTx(ctx, "emergency.create", func(ctx context.Context, tx pgx.Tx) error {
		return createEmergency(ctx, tx, e)
	})
}

func createEmergency(ctx context.Context, tx Querier, e *models.Emergency) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, e.ReporterID.String()); err != nil {
		return fmt.Errorf("failed to lock reporter: %w", err)
	}

	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM emergencies
			WHERE reporter_id = $1 AND status <> 'resolved' AND NOT is_fraud
		);
	`, e.ReporterID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check active emergency: %w", err)
	}
	if exists {
		return apperr.ErrActiveEmergencyExists
	}

	query := `
		INSERT INTO emergencies (id, type, description, latitude, longitude, priority, status, is_fraud, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		RETURNING created_at, updated_at;
	`
	err = tx.QueryRow(ctx, query,
		e.ID,
		string(e.Type),
		e.Description,
		e.Location.Latitude,
		e.Location.Longitude,
		e.Priority,
		string(e.Status),
		e.ReporterID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, uniqueActivePerReporter) {
			return apperr.ErrActiveEmergencyExists
		}
		return fmt.Errorf("failed to create emergency: %w", err)
	}
	return nil
}

// GetByID возвращает вызов по его UUID
func (r *EmergencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Emergency, error) {
	var out *models.Emergency
	err := r.store.RunWithRetry(ctx, "emergency.get", func(ctx context.Context, q Querier) error {
		e, err := scanEmergency(q.QueryRow(ctx, selectEmergency+` WHERE id = $1;`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.ErrEmergencyNotFound.With("emergency %s not found", id)
			}
			return fmt.Errorf("failed to get emergency by id: %w", err)
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockEmergency(ctx context.Context, tx Querier, id uuid.UUID) (*models.Emergency, error) {
	e, err := scanEmergency(tx.QueryRow(ctx, selectEmergency+` WHERE id = $1 FOR UPDATE;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrEmergencyNotFound.With("emergency %s not found", id)
		}
		return nil, fmt.Errorf("failed to lock emergency: %w", err)
	}
	return e, nil
}

func lockResponder(ctx context.Context, tx Querier, id uuid.UUID) (*models.ResponderAvailability, error) {
	var (
		status    string
		qualified []string
	)
	r := &models.ResponderAvailability{ResponderID: id}
	err := tx.QueryRow(ctx, `
		SELECT name, responder_status, COALESCE(qualified_types, '{}')
		FROM users
		WHERE id = $1 AND role = 'responder'
		FOR UPDATE;
	`, id).Scan(&r.Name, &status, &qualified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrResponderNotFound.With("responder %s not found", id)
		}
		return nil, fmt.Errorf("failed to lock responder: %w", err)
	}
	r.Status = models.ResponderStatus(status)
	for _, t := range qualified {
		r.QualifiedTypes = append(r.QualifiedTypes, models.EmergencyType(t))
	}
	return r, nil
}

func setResponderStatus(ctx context.Context, tx Querier, id uuid.UUID, status models.ResponderStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE users SET responder_status = $2, updated_at = NOW()
		WHERE id = $1 AND role = 'responder';
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to set responder status: %w", err)
	}
	return nil
}

func writeEmergency(ctx context.Context, tx Querier, e *models.Emergency) error {
	var respLat, respLon *float64
	if e.ResponderLocation != nil {
		respLat, respLon = &e.ResponderLocation.Latitude, &e.ResponderLocation.Longitude
	}
	err := tx.QueryRow(ctx, `
		UPDATE emergencies SET
			status = $2,
			responder_id = $3,
			responder_latitude = $4,
			responder_longitude = $5,
			is_fraud = $6,
			resolved_at = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at;
	`,
		e.ID,
		string(e.Status),
		e.ResponderID,
		respLat,
		respLon,
		e.IsFraud,
		e.ResolvedAt,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, uniqueActivePerReporter) {
			return apperr.ErrActiveEmergencyExists
		}
		return fmt.Errorf("failed to update emergency: %w", err)
	}
	return nil
}

// Assign назначает спасателя. Строки вызова и спасателя блокируются в одной транзакции,
// check решает по заблокированным данным, перевод спасателя в on_duty - условный UPDATE.
func (r *EmergencyRepository) Assign(ctx context.Context, emergencyID, responderID uuid.UUID, check models.AssignCheck) (*models.Emergency, error) {
	var out *models.Emergency
	err := r.store.InTx(ctx, "emergency.assign", func(ctx context.Context, tx pgx.Tx) error {
		e, err := assignResponder(ctx, tx, emergencyID, responderID, check)
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func assignResponder(ctx context.Context, tx Querier, emergencyID, responderID uuid.UUID, check models.AssignCheck) (*models.Emergency, error) {
	current, err := lockEmergency(ctx, tx, emergencyID)
	if err != nil {
		return nil, err
	}
	responder, err := lockResponder(ctx, tx, responderID)
	if err != nil {
		return nil, err
	}
	if err := check(current, responder); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users SET responder_status = 'on_duty', updated_at = NOW()
		WHERE id = $1 AND responder_status = 'available';
	`, responderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve responder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.ErrResponderNotAvailable.With("responder %s is not available", responderID)
	}

	// переназначение: прежний спасатель освобождается
	if current.ResponderID != nil && *current.ResponderID != responderID && current.Status.Engaged() {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET responder_status = 'available', updated_at = NOW()
			WHERE id = $1 AND responder_status = 'on_duty';
		`, *current.ResponderID); err != nil {
			return nil, fmt.Errorf("failed to release previous responder: %w", err)
		}
	}

	next := current.Clone()
	next.ResponderID = &responderID
	next.Status = models.StatusAssigned
	if err := writeEmergency(ctx, tx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Mutate применяет переход fn к заблокированной записи и сохраняет результат вместе
// с изменением статуса спасателя, если fn его вернул.
func (r *EmergencyRepository) Mutate(ctx context.Context, id uuid.UUID, fn models.MutateFunc) (*models.Emergency, error) {
	var out *models.Emergency
	err := r.store.InTx(ctx, "emergency.mutate", func(ctx context.Context, tx pgx.Tx) error {
		current, err := lockEmergency(ctx, tx, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		change, err := fn(next)
		if err != nil {
			return err
		}
		if err := writeEmergency(ctx, tx, next); err != nil {
			return err
		}
		if change != nil {
			if err := setResponderStatus(ctx, tx, change.ResponderID, change.Status); err != nil {
				return err
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetResponderStatus статус, выставленный самим спасателем. Пока за ним числится
// активный вызов, уйти из on_duty нельзя.
func (r *EmergencyRepository) SetResponderStatus(ctx context.Context, responderID uuid.UUID, status models.ResponderStatus) error {
	return r.store.InTx(ctx, "responder.status", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockResponder(ctx, tx, responderID); err != nil {
			return err
		}

		if status != models.ResponderOnDuty {
			var engaged bool
			err := tx.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM emergencies
					WHERE responder_id = $1 AND status IN ('assigned', 'accepted', 'arrived')
				);
			`, responderID).Scan(&engaged)
			if err != nil {
				return fmt.Errorf("failed to check responder assignments: %w", err)
			}
			if engaged {
				return apperr.ErrResponderHasAssignment
			}
		}
		return setResponderStatus(ctx, tx, responderID, status)
	})
}

// statusWriteSQL условный UPDATE статуса: закрытый вызов и чужое назначение не трогаются
const statusWriteSQL = `
	UPDATE emergencies SET status = $2, updated_at = NOW()
	WHERE id = $1 AND status <> 'resolved' AND ($3::uuid IS NULL OR responder_id = $3::uuid)`

func assigneeArg(w models.StatusWrite) any {
	if w.Assignee == nil {
		return nil
	}
	return w.Assignee.String()
}

// noopReason объясняет, почему условная запись не изменила строку
func noopReason(w models.StatusWrite, e *models.Emergency) error {
	if e.Status == models.StatusResolved {
		return apperr.ErrEmergencyResolved.With("emergency %s is resolved", w.EmergencyID)
	}
	if !w.Permits(e) {
		return apperr.ErrForbidden.With("emergency %s is no longer assigned to %s", w.EmergencyID, *w.Assignee)
	}
	return fmt.Errorf("status write for emergency %s affected no rows", w.EmergencyID)
}

// explainNoop перечитывает статус и назначение после записи, не затронувшей строк
func explainNoop(ctx context.Context, q Querier, w models.StatusWrite, args ...any) error {
	var (
		status      string
		responderID *uuid.UUID
	)
	args = append(args, w.EmergencyID.String())
	err := q.QueryRow(ctx, `SELECT status, responder_id FROM emergencies WHERE id = $1`, args...).Scan(&status, &responderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrEmergencyNotFound.With("emergency %s not found", w.EmergencyID)
		}
		return fmt.Errorf("failed to read emergency after status write: %w", err)
	}
	return noopReason(w, &models.Emergency{ID: w.EmergencyID, Status: models.EmergencyStatus(status), ResponderID: responderID})
}

// writeStatus условная запись; opts идут перед аргументами запроса (режим выполнения pgx)
func writeStatus(ctx context.Context, q Querier, w models.StatusWrite, opts ...any) error {
	args := append(append([]any{}, opts...), w.EmergencyID.String(), string(w.Status), assigneeArg(w))
	tag, err := q.Exec(ctx, statusWriteSQL, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return explainNoop(ctx, q, w, opts...)
	}
	return nil
}

// SetStatus основная запись статуса через повторяемую единицу работы
func (r *EmergencyRepository) SetStatus(ctx context.Context, w models.StatusWrite) error {
	return r.store.RunWithRetry(ctx, "emergency.set_status", func(ctx context.Context, q Querier) error {
		if err := writeStatus(ctx, q, w); err != nil {
			return wrapStatusErr("failed to set emergency status", err)
		}
		return nil
	})
}

// ForceStatus запасная запись напрямую в пул простым протоколом, без кеша подготовленных выражений
func (r *EmergencyRepository) ForceStatus(ctx context.Context, w models.StatusWrite) error {
	if err := writeStatus(ctx, r.store.Pool(), w, pgx.QueryExecModeSimpleProtocol); err != nil {
		return wrapStatusErr("failed to force emergency status", err)
	}
	return nil
}

// wrapStatusErr доменные ошибки возвращаются как есть, прочие получают контекст
func wrapStatusErr(msg string, err error) error {
	var domain *apperr.Error
	if errors.As(err, &domain) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// EnsureStatus идемпотентная проверочная запись: выставляет статус, если вызов не закрыт
// и назначен ожидаемому спасателю, и возвращает фактически сохраненный статус.
func (r *EmergencyRepository) EnsureStatus(ctx context.Context, w models.StatusWrite) (models.EmergencyStatus, error) {
	var persisted models.EmergencyStatus
	err := r.store.RunWithRetry(ctx, "emergency.ensure_status", func(ctx context.Context, q Querier) error {
		status, err := ensureStatus(ctx, q, w)
		if err != nil {
			return err
		}
		persisted = status
		return nil
	})
	if err != nil {
		return "", err
	}
	return persisted, nil
}

func ensureStatus(ctx context.Context, q Querier, w models.StatusWrite) (models.EmergencyStatus, error) {
	var (
		status      string
		responderID *uuid.UUID
	)
	err := q.QueryRow(ctx, `
		WITH upd AS (
			UPDATE emergencies SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status NOT IN ('resolved', $2)
				AND ($3::uuid IS NULL OR responder_id = $3::uuid)
			RETURNING status, responder_id
		)
		SELECT status, responder_id FROM upd
		UNION ALL
		SELECT status, responder_id FROM emergencies WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM upd);
	`, w.EmergencyID, string(w.Status), assigneeArg(w)).Scan(&status, &responderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.ErrEmergencyNotFound.With("emergency %s not found", w.EmergencyID)
		}
		return "", fmt.Errorf("failed to verify emergency status: %w", err)
	}

	e := &models.Emergency{ID: w.EmergencyID, Status: models.EmergencyStatus(status), ResponderID: responderID}
	if e.Status != models.StatusResolved && !w.Permits(e) {
		return "", noopReason(w, e)
	}
	return e.Status, nil
}
