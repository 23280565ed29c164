package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// RedisBroker связывает экземпляры сервиса через Redis pub/sub: событие публикуется
// в общий канал, и каждый экземпляр доставляет его своим подключениям.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *logrus.Logger
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub, logger *logrus.Logger) *RedisBroker {
	return &RedisBroker{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger,
	}
}

// Emit публикует событие. Если Redis недоступен, событие доставляется хотя бы локальным подключениям.
func (b *RedisBroker) Emit(ctx context.Context, ev models.RealtimeEvent) error {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.WithError(err).WithField("event", ev.Name).Warn("Realtime publish failed, delivering locally")
		b.hub.Deliver(ev)
		return nil
	}
	return nil
}

// Run подписывается на канал и передает события хабу до отмены ctx
func (b *RedisBroker) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	b.logger.WithField("channel", b.channel).Info("Realtime broker started")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping realtime broker.")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage(msg.Payload)
		}
	}
}

func (b *RedisBroker) handleMessage(payload string) {
	var ev models.RealtimeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		b.logger.WithError(err).Error("Failed to decode realtime event")
		return
	}
	b.hub.Deliver(ev)
}
