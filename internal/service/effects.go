package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Effect побочное действие перехода. Переходы только описывают эффекты, выполняет их effectDispatcher.
type Effect interface {
	kind() string
}

// HistoryEffect запись в журнал аудита
type HistoryEffect struct {
	EmergencyID uuid.UUID
	EventType   models.HistoryEventType
	Payload     map[string]any
}

// NotifyEffect уведомление во входящие и push. Staff добавляет всех администраторов и спасателей.
type NotifyEffect struct {
	UserIDs []uuid.UUID
	Staff   bool
	Type    string
	Title   string
	Message string
	Data    map[string]string
}

// EmitEffect событие реального времени
type EmitEffect struct {
	Event   string
	UserIDs []uuid.UUID
	Admin   bool
	Data    any
}

func (HistoryEffect) kind() string { return "history" }
func (NotifyEffect) kind() string  { return "notify" }
func (EmitEffect) kind() string    { return "emit" }

// effectDispatcher выполняет эффекты перехода. Весь список укладывается в один бюджет timeout:
// сначала журнал по порядку, затем уведомления и события двумя параллельными очередями,
// каждая в исходном порядке. Ошибки логируются и учитываются в метриках,
// но никогда не возвращаются вызывающему.
type effectDispatcher struct {
	history  HistoryRepository
	notifier Notifier
	emitter  Emitter
	direct   DirectQuery
	timeout  time.Duration
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func (d *effectDispatcher) Dispatch(ctx context.Context, effects []Effect) {
	var (
		notifications []NotifyEffect
		events        []EmitEffect
	)

	// эффекты не должны обрываться вместе с запросом, ответ на который уже решен
	budget, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	for _, eff := range effects {
		switch e := eff.(type) {
		case HistoryEffect:
			d.appendHistory(budget, e)
		case NotifyEffect:
			notifications = append(notifications, e)
		case EmitEffect:
			events = append(events, e)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		for _, e := range notifications {
			d.notify(budget, e)
		}
		return nil
	})
	g.Go(func() error {
		for _, e := range events {
			d.emit(budget, e)
		}
		return nil
	})
	_ = g.Wait()
}

func (d *effectDispatcher) fail(kind string, err error, fields logrus.Fields) {
	d.metrics.ObserveEffectFailure(kind)
	d.logger.WithFields(fields).WithError(err).Warn("Side effect failed")
}

func (d *effectDispatcher) appendHistory(ctx context.Context, e HistoryEffect) {
	entry := &models.HistoryEntry{
		EmergencyID: e.EmergencyID,
		EventType:   e.EventType,
		Payload:     e.Payload,
	}
	if err := d.history.Append(ctx, entry); err != nil {
		d.fail(e.kind(), err, logrus.Fields{
			"emergency_id": e.EmergencyID,
			"event_type":   e.EventType,
		})
	}
}

func (d *effectDispatcher) notify(ctx context.Context, e NotifyEffect) {
	recipients := e.UserIDs
	if e.Staff {
		staff, err := d.direct.StaffIDs(ctx)
		if err != nil {
			d.fail("staff_lookup", err, logrus.Fields{"type": e.Type})
		}
		recipients = append(append([]uuid.UUID{}, recipients...), staff...)
	}

	seen := make(map[uuid.UUID]struct{}, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}

		n := models.Notification{
			UserID:  id,
			Type:    e.Type,
			Title:   e.Title,
			Message: e.Message,
			Data:    e.Data,
		}
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.fail(e.kind(), err, logrus.Fields{"type": e.Type, "user_id": id})
		}
	}
}

func (d *effectDispatcher) emit(ctx context.Context, e EmitEffect) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		d.fail(e.kind(), err, logrus.Fields{"event": e.Event})
		return
	}
	ev := models.RealtimeEvent{
		Name:    e.Event,
		UserIDs: e.UserIDs,
		Admin:   e.Admin,
		Data:    data,
		SentAt:  time.Now().UTC(),
	}
	if err := d.emitter.Emit(ctx, ev); err != nil {
		d.fail(e.kind(), err, logrus.Fields{"event": e.Event})
	}
}
