package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

type HistoryRepository struct {
	store *Store
}

func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

// Append добавляет запись аудита. Полезная нагрузка передается как JSON-текст с явным приведением к jsonb.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal history payload: %w", err)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	return r.store.RunWithRetry(ctx, "history.append", func(ctx context.Context, q Querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO emergency_history (id, emergency_id, event_type, payload)
			VALUES ($1, $2, $3, $4::jsonb)
			ON CONFLICT (id) DO NOTHING
			RETURNING created_at;
		`, entry.ID, entry.EmergencyID, string(entry.EventType), string(payload)).Scan(&entry.CreatedAt)
		if err != nil {
			// повтор после уже выполненной вставки
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to append history entry: %w", err)
		}
		return nil
	})
}

// ListFor возвращает события вызова в порядке их записи
func (r *HistoryRepository) ListFor(ctx context.Context, emergencyID uuid.UUID) ([]*models.HistoryEntry, error) {
	var entries []*models.HistoryEntry
	err := r.store.RunWithRetry(ctx, "history.list", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `
			SELECT id, emergency_id, event_type, payload, created_at
			FROM emergency_history
			WHERE emergency_id = $1
			ORDER BY created_at ASC, seq ASC;
		`, emergencyID)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		defer rows.Close()

		entries = make([]*models.HistoryEntry, 0)
		for rows.Next() {
			var (
				entry     models.HistoryEntry
				eventType string
				payload   []byte
			)
			if err := rows.Scan(&entry.ID, &entry.EmergencyID, &eventType, &payload, &entry.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan history row: %w", err)
			}
			entry.EventType = models.HistoryEventType(eventType)
			if err := json.Unmarshal(payload, &entry.Payload); err != nil {
				return fmt.Errorf("failed to decode history payload: %w", err)
			}
			entries = append(entries, &entry)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error history iteration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAllSummaries последнее событие каждого вызова, сначала самые новые вызовы
func (r *HistoryRepository) ListAllSummaries(ctx context.Context, limit int) ([]*models.HistorySummary, error) {
	var summaries []*models.HistorySummary
	err := r.store.RunWithRetry(ctx, "history.summaries", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `
			SELECT e.id, e.type, e.status, e.created_at, h.event_type, h.created_at, h.payload
			FROM emergencies e
			JOIN LATERAL (
				SELECT event_type, created_at, payload
				FROM emergency_history
				WHERE emergency_id = e.id
				ORDER BY created_at DESC, seq DESC
				LIMIT 1
			) h ON TRUE
			ORDER BY e.created_at DESC
			LIMIT $1;
		`, limit)
		if err != nil {
			return fmt.Errorf("failed to list history summaries: %w", err)
		}
		defer rows.Close()

		summaries = make([]*models.HistorySummary, 0)
		for rows.Next() {
			var (
				s                          models.HistorySummary
				typ, status, lastEventType string
				payload                    []byte
			)
			if err := rows.Scan(&s.EmergencyID, &typ, &status, &s.EmergencyAt, &lastEventType, &s.LastEventAt, &payload); err != nil {
				return fmt.Errorf("failed to scan history summary: %w", err)
			}
			s.EmergencyType = models.EmergencyType(typ)
			s.Status = models.EmergencyStatus(status)
			s.LastEventType = models.HistoryEventType(lastEventType)
			if err := json.Unmarshal(payload, &s.LastEventDetail); err != nil {
				return fmt.Errorf("failed to decode history payload: %w", err)
			}
			summaries = append(summaries, &s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
