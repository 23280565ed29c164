package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

const (
	jobQueueKey = "notification_jobs"
)

// RedisPublisher ставит уведомления в очередь Redis; доставку выполняет Worker
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Notify публикует задание на уведомление в очередь Redis
func (p *RedisPublisher) Notify(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	// LPUSH в голову списка, Worker забирает с хвоста
	if err := p.redisClient.LPush(ctx, jobQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification job to Redis: %w", err)
	}
	return nil
}
