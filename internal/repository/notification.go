package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// NotificationRepository входящие уведомления и push-токены пользователей
type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Create сохраняет уведомление во входящие пользователя
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}
	return r.store.RunWithRetry(ctx, "notification.create", func(ctx context.Context, q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO notifications (id, user_id, type, title, message, data)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb);
		`, uuid.New(), n.UserID, n.Type, n.Title, n.Message, string(data))
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
}

// PushTokens возвращает зарегистрированные токены устройств пользователя
func (r *NotificationRepository) PushTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	err := r.store.RunWithRetry(ctx, "notification.tokens", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `SELECT token FROM push_tokens WHERE user_id = $1;`, userID)
		if err != nil {
			return fmt.Errorf("failed to list push tokens: %w", err)
		}
		defer rows.Close()

		tokens = tokens[:0]
		for rows.Next() {
			var token string
			if err := rows.Scan(&token); err != nil {
				return fmt.Errorf("failed to scan push token: %w", err)
			}
			tokens = append(tokens, token)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
