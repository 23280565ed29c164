package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

type fakeInbox struct {
	created   []*models.Notification
	createErr error
	tokens    []string
	tokensErr error
}

func (f *fakeInbox) Create(_ context.Context, n *models.Notification) error {
	f.created = append(f.created, n)
	return f.createErr
}

func (f *fakeInbox) PushTokens(context.Context, uuid.UUID) ([]string, error) {
	return f.tokens, f.tokensErr
}

type fakeSender struct {
	sent []PushMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg PushMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func TestWorker_Process(t *testing.T) {
	n := &models.Notification{
		UserID:  uuid.New(),
		Type:    "emergency_assigned",
		Title:   "Responder assigned",
		Message: "A responder is on the way",
		Data:    map[string]string{"emergency_id": "e1"},
	}

	tests := []struct {
		name         string
		inbox        *fakeInbox
		sender       *fakeSender
		wantSent     int
		wantFailures map[string]float64
	}{
		{
			name:     "stores and pushes",
			inbox:    &fakeInbox{tokens: []string{"t1", "t2"}},
			sender:   &fakeSender{},
			wantSent: 1,
		},
		{
			name:     "no tokens",
			inbox:    &fakeInbox{},
			sender:   &fakeSender{},
			wantSent: 0,
		},
		{
			name:         "inbox failure still pushes",
			inbox:        &fakeInbox{createErr: errors.New("db down"), tokens: []string{"t1"}},
			sender:       &fakeSender{},
			wantSent:     1,
			wantFailures: map[string]float64{"inbox": 1},
		},
		{
			name:         "token lookup failure",
			inbox:        &fakeInbox{tokensErr: errors.New("db down")},
			sender:       &fakeSender{},
			wantSent:     0,
			wantFailures: map[string]float64{"push_tokens": 1},
		},
		{
			name:         "push failure is recorded",
			inbox:        &fakeInbox{tokens: []string{"t1"}},
			sender:       &fakeSender{err: errors.New("provider down")},
			wantSent:     1,
			wantFailures: map[string]float64{"push": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			w := NewWorker(nil, tt.inbox, tt.sender, quietLogger(), m)

			w.process(context.Background(), n)

			require.Len(t, tt.inbox.created, 1)
			assert.Equal(t, n.Title, tt.inbox.created[0].Title)
			require.Len(t, tt.sender.sent, tt.wantSent)
			if tt.wantSent > 0 {
				assert.Equal(t, n.Message, tt.sender.sent[0].Body)
				assert.Equal(t, tt.inbox.tokens, tt.sender.sent[0].Tokens)
				assert.Equal(t, "e1", tt.sender.sent[0].Data["emergency_id"])
			}
			for kind, want := range tt.wantFailures {
				assert.Equal(t, want, testutil.ToFloat64(m.EffectFailures.WithLabelValues(kind)))
			}
		})
	}
}

func TestWebhookSender_SignsPayload(t *testing.T) {
	var (
		gotBody []byte
		gotSig  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Webhook-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWebhookSender(WebhookOptions{URL: srv.URL, Secret: "s3cret", Timeout: time.Second, MaxRetries: 1}, quietLogger())
	msg := PushMessage{Tokens: []string{"t1"}, Title: "New emergency", Body: "medical"}
	require.NoError(t, s.Send(context.Background(), msg))

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSig)

	var decoded PushMessage
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, msg, decoded)
}

func TestWebhookSender_RetriesWithBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewWebhookSender(WebhookOptions{URL: srv.URL, Timeout: time.Second, MaxRetries: 3, BaseDelay: time.Millisecond}, quietLogger())
	require.NoError(t, s.Send(context.Background(), PushMessage{Tokens: []string{"t1"}}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookSender_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewWebhookSender(WebhookOptions{URL: srv.URL, Timeout: time.Second, MaxRetries: 2, BaseDelay: time.Millisecond}, quietLogger())
	err := s.Send(context.Background(), PushMessage{Tokens: []string{"t1"}})
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookSender_NoURL(t *testing.T) {
	s := NewWebhookSender(WebhookOptions{}, quietLogger())
	assert.NoError(t, s.Send(context.Background(), PushMessage{}))
}

type fakeMulticast struct {
	got  *messaging.MulticastMessage
	resp *messaging.BatchResponse
	err  error
}

func (f *fakeMulticast) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.got = m
	return f.resp, f.err
}

func TestFCMSender_Send(t *testing.T) {
	client := &fakeMulticast{resp: &messaging.BatchResponse{SuccessCount: 1, FailureCount: 1}}
	s := &FCMSender{client: client, logger: quietLogger()}

	err := s.Send(context.Background(), PushMessage{
		Tokens: []string{"a", "b"},
		Title:  "Emergency resolved",
		Body:   "Stay safe",
		Data:   map[string]string{"emergency_id": "e1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, client.got.Tokens)
	assert.Equal(t, "Emergency resolved", client.got.Notification.Title)
	assert.Equal(t, "e1", client.got.Data["emergency_id"])

	client.resp = &messaging.BatchResponse{FailureCount: 2}
	assert.Error(t, s.Send(context.Background(), PushMessage{Tokens: []string{"a", "b"}}))

	client.err = errors.New("unavailable")
	assert.Error(t, s.Send(context.Background(), PushMessage{Tokens: []string{"a"}}))
}
