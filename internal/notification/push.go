package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// PushMessage одно push-сообщение на набор устройств
type PushMessage struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// PushSender провайдер доставки push-уведомлений
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) error
}

// NoopSender используется, когда провайдер не настроен
type NoopSender struct{}

func (NoopSender) Send(context.Context, PushMessage) error { return nil }

type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMSender отправляет push через Firebase Cloud Messaging
type FCMSender struct {
	client multicastClient
	logger *logrus.Logger
}

// NewFCMSender инициализирует приложение Firebase из файла сервисного аккаунта
func NewFCMSender(ctx context.Context, credentialsFile string, logger *logrus.Logger) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return &FCMSender{client: client, logger: logger}, nil
}

func (s *FCMSender) Send(ctx context.Context, msg PushMessage) error {
	resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return fmt.Errorf("fcm multicast: %w", err)
	}
	if resp.FailureCount > 0 {
		s.logger.WithFields(logrus.Fields{
			"success": resp.SuccessCount,
			"failure": resp.FailureCount,
		}).Warn("Some push tokens were rejected by FCM")
	}
	if resp.SuccessCount == 0 {
		return fmt.Errorf("fcm rejected all %d tokens", len(msg.Tokens))
	}
	return nil
}

// WebhookOptions параметры доставки через HTTP-вебхук
type WebhookOptions struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// WebhookSender передает push во внешний шлюз POST-запросом с HMAC-подписью
type WebhookSender struct {
	opts       WebhookOptions
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewWebhookSender(opts WebhookOptions, logger *logrus.Logger) *WebhookSender {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &WebhookSender{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

func (s *WebhookSender) Send(ctx context.Context, msg PushMessage) error {
	if s.opts.URL == "" {
		s.logger.Warn("Push webhook URL is not configured. Skipping push delivery.")
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	log := s.logger.WithField("tokens", len(msg.Tokens))
	delay := s.opts.BaseDelay
	var lastErr error
	for i := 0; i < s.opts.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2 // Экспоненциальная задержка
		}

		lastErr = s.post(ctx, payload)
		if lastErr == nil {
			log.Debug("Push webhook delivered successfully.")
			return nil
		}
		log.WithError(lastErr).Warnf("Push webhook delivery failed. Retries left: %d", s.opts.MaxRetries-1-i)
	}
	return fmt.Errorf("push webhook failed after %d attempts: %w", s.opts.MaxRetries, lastErr)
}

func (s *WebhookSender) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// HMAC подпись, если секрет задан
	if s.opts.Secret != "" {
		req.Header.Set("X-Webhook-Signature", generateHMACSHA256(payload, s.opts.Secret))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return nil
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
