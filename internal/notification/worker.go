package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

const popTimeout = 5 * time.Second

// Inbox хранилище входящих уведомлений и push-токенов
type Inbox interface {
	Create(ctx context.Context, n *models.Notification) error
	PushTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Worker забирает задания из очереди, сохраняет уведомление во входящие и отправляет push
type Worker struct {
	redisClient *redis.Client
	inbox       Inbox
	sender      PushSender
	logger      *logrus.Logger
	metrics     *metrics.Metrics
	retryDelay  time.Duration
}

// NewWorker создает новый Worker
func NewWorker(redisClient *redis.Client, inbox Inbox, sender PushSender, logger *logrus.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		redisClient: redisClient,
		inbox:       inbox,
		sender:      sender,
		logger:      logger,
		metrics:     m,
		retryDelay:  time.Second,
	}
}

// Start запускает горутину для обработки очереди уведомлений
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification worker.")
				return
			default:
			}

			// BRPOP с таймаутом, чтобы отмена ctx замечалась без ожидания нового задания
			result, err := w.redisClient.BRPop(ctx, popTimeout, jobQueueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				w.logger.WithError(err).Error("Failed to pop notification job from Redis")
				time.Sleep(w.retryDelay)
				continue
			}

			// result[0] - ключ, result[1] - значение
			var n models.Notification
			if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
				w.logger.WithError(err).Error("Failed to unmarshal notification job from Redis")
				continue
			}
			w.process(ctx, &n)
		}
	}()
}

func (w *Worker) process(ctx context.Context, n *models.Notification) {
	log := w.logger.WithFields(logrus.Fields{
		"user_id": n.UserID,
		"type":    n.Type,
	})
	log.Debug("Processing notification job...")

	if err := w.inbox.Create(ctx, n); err != nil {
		w.metrics.ObserveEffectFailure("inbox")
		log.WithError(err).Error("Failed to store notification")
	}

	tokens, err := w.inbox.PushTokens(ctx, n.UserID)
	if err != nil {
		w.metrics.ObserveEffectFailure("push_tokens")
		log.WithError(err).Error("Failed to load push tokens")
		return
	}
	if len(tokens) == 0 {
		log.Debug("No push tokens registered, skipping push")
		return
	}

	msg := PushMessage{
		Tokens: tokens,
		Title:  n.Title,
		Body:   n.Message,
		Data:   n.Data,
	}
	if err := w.sender.Send(ctx, msg); err != nil {
		w.metrics.ObserveEffectFailure("push")
		log.WithError(err).Warn("Push delivery failed")
		return
	}
	log.WithField("tokens", len(tokens)).Debug("Push delivered")
}
