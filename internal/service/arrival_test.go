package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/shenikar/emergency_dispatch_system/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestArrivalPipeline(t *testing.T) (*arrivalPipeline, *mocks.MockArrivalWriter, *metrics.Metrics) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArrivalWriter(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	return &arrivalPipeline{
		writer:       writer,
		stageTimeout: time.Second,
		logger:       logger.Discard(),
		metrics:      m,
	}, writer, m
}

func stageCount(m *metrics.Metrics, stage, result string) float64 {
	return testutil.ToFloat64(m.ArrivalWriteStages.WithLabelValues(stage, result))
}

func TestArrivalPipeline_Write(t *testing.T) {
	storageDown := errors.New("conn closed")
	assignee := uuid.New()
	write := models.StatusWrite{EmergencyID: uuid.New(), Status: models.StatusArrived, Assignee: &assignee}

	testCases := []struct {
		name          string
		setupMocks    func(w *mocks.MockArrivalWriter)
		expectedError error
	}{
		{
			name: "primary write succeeds",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(nil)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.StatusArrived, nil)
			},
		},
		{
			name: "fallback after primary failure",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				gomock.InOrder(
					w.EXPECT().SetStatus(gomock.Any(), write).Return(apperr.ErrRetriesExhausted),
					w.EXPECT().ForceStatus(gomock.Any(), write).Return(nil),
					w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.StatusArrived, nil),
				)
			},
		},
		{
			name: "verification write alone persists",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().ForceStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.StatusArrived, nil)
			},
		},
		{
			name: "domain rejection stops the pipeline",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(apperr.ErrEmergencyNotFound)
			},
			expectedError: apperr.ErrEmergencyNotFound,
		},
		{
			name: "every stage fails",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().ForceStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.EmergencyStatus(""), storageDown)
			},
			expectedError: apperr.ErrArrivalNotPersisted,
		},
		{
			name: "verification failure after confirmed write",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(nil)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.EmergencyStatus(""), storageDown)
			},
		},
		{
			name: "resolved concurrently",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(nil)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.StatusResolved, nil)
			},
			expectedError: apperr.ErrEmergencyResolved,
		},
		{
			name: "verification reports another status",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(nil)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.StatusAssigned, nil)
			},
			expectedError: apperr.ErrArrivalNotPersisted,
		},
		{
			name: "assignment changed before primary write",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(apperr.ErrForbidden.With("reassigned"))
			},
			expectedError: apperr.ErrForbidden,
		},
		{
			name: "resolved before primary write",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(apperr.ErrEmergencyResolved)
			},
			expectedError: apperr.ErrEmergencyResolved,
		},
		{
			name: "fallback rejected stops before verification",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().ForceStatus(gomock.Any(), write).Return(apperr.ErrEmergencyResolved)
			},
			expectedError: apperr.ErrEmergencyResolved,
		},
		{
			name: "verification rejects reassigned emergency",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().ForceStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.EmergencyStatus(""), apperr.ErrForbidden.With("reassigned"))
			},
			expectedError: apperr.ErrForbidden,
		},
		{
			name: "verification not found",
			setupMocks: func(w *mocks.MockArrivalWriter) {
				w.EXPECT().SetStatus(gomock.Any(), write).Return(storageDown)
				w.EXPECT().ForceStatus(gomock.Any(), write).Return(nil)
				w.EXPECT().EnsureStatus(gomock.Any(), write).Return(models.EmergencyStatus(""), apperr.ErrEmergencyNotFound)
			},
			expectedError: apperr.ErrEmergencyNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Подготовка
			pipeline, writer, _ := newTestArrivalPipeline(t)
			tc.setupMocks(writer)

			// Действие
			err := pipeline.Write(context.Background(), write)

			// Проверки
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArrivalPipeline_FallbackGetsFreshDeadline(t *testing.T) {
	// Подготовка
	pipeline, writer, m := newTestArrivalPipeline(t)
	write := models.StatusWrite{EmergencyID: uuid.New(), Status: models.StatusArrived}
	ctx, cancel := context.WithCancel(context.Background())

	// Ожидания
	writer.EXPECT().SetStatus(gomock.Any(), write).
		DoAndReturn(func(context.Context, models.StatusWrite) error {
			cancel()
			return context.Canceled
		})
	writer.EXPECT().ForceStatus(gomock.Any(), write).
		DoAndReturn(func(ctx context.Context, _ models.StatusWrite) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return ctx.Err()
		})
	writer.EXPECT().EnsureStatus(gomock.Any(), write).
		DoAndReturn(func(ctx context.Context, _ models.StatusWrite) (models.EmergencyStatus, error) {
			return models.StatusArrived, ctx.Err()
		})

	// Действие
	err := pipeline.Write(ctx, write)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, float64(1), stageCount(m, stagePrimary, "error"))
	assert.Equal(t, float64(1), stageCount(m, stageFallback, "ok"))
	assert.Equal(t, float64(1), stageCount(m, stageVerify, "ok"))
}

func TestIsDomainRejection(t *testing.T) {
	assert.True(t, isDomainRejection(apperr.ErrEmergencyNotFound))
	assert.True(t, isDomainRejection(apperr.ErrForbidden.With("nope")))
	assert.True(t, isDomainRejection(apperr.ErrEmergencyResolved))
	assert.True(t, isDomainRejection(apperr.ErrActiveEmergencyExists))
	assert.False(t, isDomainRejection(apperr.ErrRetriesExhausted))
	assert.False(t, isDomainRejection(apperr.ErrStorageUnavailable))
	assert.False(t, isDomainRejection(context.DeadlineExceeded))
	assert.False(t, isDomainRejection(errors.New("boom")))
}
