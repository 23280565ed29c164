package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stalledPeer зависший получатель: держит вызов до истечения контекста
type stalledPeer struct {
	notifies atomic.Int32
	emits    atomic.Int32
}

func (p *stalledPeer) Notify(ctx context.Context, _ models.Notification) error {
	p.notifies.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (p *stalledPeer) Emit(ctx context.Context, _ models.RealtimeEvent) error {
	p.emits.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestDispatch_StalledPeersShareOneBudget(t *testing.T) {
	// Подготовка
	store := newFakeStore()
	peer := &stalledPeer{}
	const budget = 50 * time.Millisecond
	d := &effectDispatcher{
		history:  store,
		notifier: peer,
		emitter:  peer,
		direct:   store,
		timeout:  budget,
		logger:   logger.Discard(),
	}
	emergencyID := uuid.New()
	effects := []Effect{
		HistoryEffect{EmergencyID: emergencyID, EventType: models.HistoryCreated},
		NotifyEffect{UserIDs: []uuid.UUID{uuid.New()}, Type: "a"},
		EmitEffect{Event: models.EventEmergencyNew, Admin: true},
		NotifyEffect{UserIDs: []uuid.UUID{uuid.New()}, Type: "b"},
		EmitEffect{Event: models.EventEmergencyUpdated, Admin: true},
		NotifyEffect{UserIDs: []uuid.UUID{uuid.New()}, Type: "c"},
		EmitEffect{Event: models.EventEmergencyUpdated, Admin: true},
	}

	// Действие
	started := time.Now()
	d.Dispatch(context.Background(), effects)
	elapsed := time.Since(started)

	// Проверки: шесть зависших вызовов укладываются в один бюджет, а не в шесть
	assert.Less(t, elapsed, 3*budget)
	assert.EqualValues(t, 3, peer.notifies.Load())
	assert.EqualValues(t, 3, peer.emits.Load())

	history, err := store.ListFor(context.Background(), emergencyID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDispatch_KeepsOrderWithinLane(t *testing.T) {
	// Подготовка
	store := newFakeStore()
	rec := &recorder{}
	d := &effectDispatcher{
		history:  store,
		notifier: rec,
		emitter:  rec,
		direct:   store,
		timeout:  time.Second,
		logger:   logger.Discard(),
	}
	emergencyID := uuid.New()
	user := uuid.New()

	// Действие
	d.Dispatch(context.Background(), []Effect{
		EmitEffect{Event: models.EventEmergencyNew, Admin: true},
		HistoryEffect{EmergencyID: emergencyID, EventType: models.HistoryCreated},
		NotifyEffect{UserIDs: []uuid.UUID{user}, Type: "first"},
		EmitEffect{Event: models.EventEmergencyAssigned, Admin: true},
		HistoryEffect{EmergencyID: emergencyID, EventType: models.HistoryAssigned},
		NotifyEffect{UserIDs: []uuid.UUID{user}, Type: "second"},
		EmitEffect{Event: models.EventEmergencyUpdated, Admin: true},
	})

	// Проверки
	assert.Equal(t, []string{
		models.EventEmergencyNew,
		models.EventEmergencyAssigned,
		models.EventEmergencyUpdated,
	}, rec.eventNames())

	rec.mu.Lock()
	require.Len(t, rec.notifications, 2)
	assert.Equal(t, "first", rec.notifications[0].Type)
	assert.Equal(t, "second", rec.notifications[1].Type)
	rec.mu.Unlock()

	history, err := store.ListFor(context.Background(), emergencyID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.HistoryCreated, history[0].EventType)
	assert.Equal(t, models.HistoryAssigned, history[1].EventType)
}
