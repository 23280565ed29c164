package service

import (
	"context"
	"errors"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Arrival write stages
const (
	stagePrimary  = "primary"
	stageFallback = "fallback"
	stageVerify   = "verify"
)

// arrivalPipeline записывает статус arrived в три идемпотентные ступени:
// основная запись с повторами, запасная прямая запись при ее ошибке и
// обязательная проверочная запись. Результат определяется одной проверкой:
// сохраненный статус должен быть arrived.
type arrivalPipeline struct {
	writer       ArrivalWriter
	stageTimeout time.Duration
	logger       *logrus.Logger
	metrics      *metrics.Metrics
}

func (p *arrivalPipeline) Write(ctx context.Context, w models.StatusWrite) error {
	log := p.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "arrivalPipeline.Write",
		"emergency_id": w.EmergencyID,
	})

	written := false
	primaryErr := p.writer.SetStatus(ctx, w)
	p.metrics.ObserveArrivalStage(stagePrimary, primaryErr)
	if primaryErr == nil {
		written = true
	} else {
		if isDomainRejection(primaryErr) {
			return primaryErr
		}
		log.WithError(primaryErr).Warn("Primary arrival write failed, using fallback")

		fctx, cancel := p.stageContext(ctx)
		fallbackErr := p.writer.ForceStatus(fctx, w)
		cancel()
		p.metrics.ObserveArrivalStage(stageFallback, fallbackErr)
		switch {
		case fallbackErr == nil:
			written = true
		case isDomainRejection(fallbackErr):
			return fallbackErr
		default:
			log.WithError(fallbackErr).Warn("Fallback arrival write failed")
		}
	}

	vctx, cancel := p.stageContext(ctx)
	persisted, verifyErr := p.writer.EnsureStatus(vctx, w)
	cancel()
	p.metrics.ObserveArrivalStage(stageVerify, verifyErr)

	switch {
	case verifyErr != nil && isDomainRejection(verifyErr):
		return verifyErr
	case verifyErr != nil && written:
		// запись уже подтверждена одной из предыдущих ступеней
		log.WithError(verifyErr).Warn("Arrival verification write failed after a successful write")
		return nil
	case verifyErr != nil:
		log.WithError(verifyErr).Error("Arrival could not be persisted")
		return apperr.Wrap(apperr.KindInternal, apperr.ErrArrivalNotPersisted.Code, apperr.ErrArrivalNotPersisted.Message, verifyErr)
	case persisted == models.StatusResolved:
		return apperr.ErrEmergencyResolved.With("emergency %s was resolved concurrently", w.EmergencyID)
	case persisted != w.Status:
		return apperr.ErrArrivalNotPersisted.With("persisted status is %s", persisted)
	}
	return nil
}

// stageContext запасные ступени получают собственный срок, если срок запроса уже истек
func (p *arrivalPipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), p.stageTimeout)
}

// isDomainRejection ошибки, которые повтор записи не исправит
func isDomainRejection(err error) bool {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case apperr.KindNotFound, apperr.KindInvalidState, apperr.KindForbidden, apperr.KindConflict:
		return true
	}
	return false
}
