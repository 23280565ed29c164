package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

const maxSummaryLimit = 500

// EmergencyDeps хранилища и внешние участники, с которыми работает сервис
type EmergencyDeps struct {
	Emergencies EmergencyRepository
	Arrivals    ArrivalWriter
	History     HistoryRepository
	Direct      DirectQuery
	Notifier    Notifier
	Emitter     Emitter
}

type emergencyService struct {
	repo         EmergencyRepository
	history      HistoryRepository
	direct       DirectQuery
	arrival      *arrivalPipeline
	effects      *effectDispatcher
	summaryLimit int
	now          func() time.Time
	logger       *logrus.Logger
	metrics      *metrics.Metrics
}

func NewEmergencyService(deps EmergencyDeps, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) EmergencyService {
	effectTimeout := cfg.EffectTimeout
	if effectTimeout <= 0 {
		effectTimeout = 5 * time.Second
	}
	return &emergencyService{
		repo:    deps.Emergencies,
		history: deps.History,
		direct:  deps.Direct,
		arrival: &arrivalPipeline{
			writer:       deps.Arrivals,
			stageTimeout: cfg.DBOpTimeout,
			logger:       logger,
			metrics:      m,
		},
		effects: &effectDispatcher{
			history:  deps.History,
			notifier: deps.Notifier,
			emitter:  deps.Emitter,
			direct:   deps.Direct,
			timeout:  effectTimeout,
			logger:   logger,
			metrics:  m,
		},
		summaryLimit: cfg.HistorySummaryLimit,
		now:          time.Now,
		logger:       logger,
		metrics:      m,
	}
}

// logFailure: отказы по правилам предметной области - Warn, остальное - Error
func logFailure(log *logrus.Entry, err error, msg string) {
	switch apperr.KindOf(err) {
	case apperr.KindInternal, apperr.KindTransientStorage:
		log.WithError(err).Error(msg)
	default:
		log.WithError(err).Warn(msg)
	}
}

// CreateEmergency создает вызов от имени заявителя
func (s *emergencyService) CreateEmergency(ctx context.Context, actor models.Actor, in models.NewEmergency) (*models.Emergency, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "emergency",
		"method":   "CreateEmergency",
		"reporter": actor.UserID,
		"type":     in.Type,
	})
	log.Info("Attempting to create a new emergency")

	e, err := s.create(ctx, actor, in)
	s.metrics.ObserveTransition("create", err)
	if err != nil {
		logFailure(log, err, "Failed to create emergency")
		return nil, fmt.Errorf("service: could not create emergency: %w", err)
	}

	s.effects.Dispatch(ctx, createdEffects(e))
	log.WithFields(logrus.Fields{
		"emergency_id": e.ID,
		"priority":     e.Priority,
	}).Info("Emergency created successfully")
	return e, nil
}

func (s *emergencyService) create(ctx context.Context, actor models.Actor, in models.NewEmergency) (*models.Emergency, error) {
	if err := authorize(capCreate, actor, nil); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperr.ErrInvalidInput.With("unknown emergency type %q", in.Type)
	}

	// быстрый отказ; окончательно инвариант держит транзакция в репозитории
	active, err := s.direct.ActiveEmergencyForReporter(ctx, actor.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("reporter", actor.UserID).Warn("Active emergency pre-check failed")
	} else if active != nil {
		return nil, apperr.ErrActiveEmergencyExists.With("reporter already has active emergency %s", *active)
	}

	profile, err := s.direct.EmergencyContext(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("load reporter profile: %w", err)
	}

	e := &models.Emergency{
		ID:          uuid.New(),
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Location:    in.Location,
		Priority:    DerivePriority(profile),
		Status:      models.StatusPending,
		ReporterID:  actor.UserID,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AssignResponder назначает спасателя; вызов и статус спасателя меняются в одной транзакции
func (s *emergencyService) AssignResponder(ctx context.Context, actor models.Actor, emergencyID, responderID uuid.UUID) (*models.Emergency, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "AssignResponder",
		"emergency_id": emergencyID,
		"responder_id": responderID,
	})
	log.Info("Attempting to assign responder")

	if err := authorize(capAssign, actor, nil); err != nil {
		s.metrics.ObserveTransition("assign", err)
		logFailure(log, err, "Assign rejected")
		return nil, err
	}

	var (
		responderName string
		released      *uuid.UUID
	)
	e, err := s.repo.Assign(ctx, emergencyID, responderID, func(current *models.Emergency, r *models.ResponderAvailability) error {
		responderName, released = r.Name, nil
		if err := checkAssignment(current, r); err != nil {
			return err
		}
		if current.ResponderID != nil && *current.ResponderID != responderID && current.Status.Engaged() {
			prev := *current.ResponderID
			released = &prev
		}
		return nil
	})
	s.metrics.ObserveTransition("assign", err)
	if err != nil {
		logFailure(log, err, "Failed to assign responder")
		return nil, fmt.Errorf("service: could not assign responder: %w", err)
	}

	s.effects.Dispatch(ctx, assignedEffects(e, actor, responderName, released))
	log.Info("Responder assigned successfully")
	return e, nil
}

// AcceptAssignment подтверждение назначения спасателем
func (s *emergencyService) AcceptAssignment(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "AcceptAssignment",
		"emergency_id": emergencyID,
		"actor":        actor.UserID,
	})
	log.Info("Attempting to accept assignment")

	e, err := s.repo.Mutate(ctx, emergencyID, accept(actor))
	s.metrics.ObserveTransition("accept", err)
	if err != nil {
		logFailure(log, err, "Failed to accept assignment")
		return nil, fmt.Errorf("service: could not accept assignment: %w", err)
	}

	s.effects.Dispatch(ctx, acceptedEffects(e, actor))
	log.Info("Assignment accepted successfully")
	return e, nil
}

// MarkArrived фиксирует прибытие. Повторный вызов для уже прибывшего - без изменений.
func (s *emergencyService) MarkArrived(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "MarkArrived",
		"emergency_id": emergencyID,
		"actor":        actor.UserID,
	})
	log.Info("Attempting to mark arrival")

	e, changed, err := s.markArrived(ctx, actor, emergencyID)
	s.metrics.ObserveTransition("arrive", err)
	if err != nil {
		logFailure(log, err, "Failed to mark arrival")
		return nil, fmt.Errorf("service: could not mark arrival: %w", err)
	}
	if !changed {
		log.Info("Emergency already marked as arrived")
		return e, nil
	}

	name := s.responderName(ctx, actor, e.ResponderID)
	s.effects.Dispatch(ctx, arrivedEffects(e, name))
	log.Info("Arrival recorded successfully")
	return e, nil
}

func (s *emergencyService) markArrived(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, bool, error) {
	current, err := s.repo.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, false, err
	}
	if err := authorize(capAdvance, actor, current); err != nil {
		return nil, false, err
	}
	if err := ensureOpen(current); err != nil {
		return nil, false, err
	}
	if current.Status == models.StatusArrived {
		return current, false, nil
	}

	// назначение могло смениться после проверки прав: запись проходит только для того же спасателя
	write := models.StatusWrite{EmergencyID: emergencyID, Status: models.StatusArrived}
	if !actor.IsAdmin() {
		assignee := actor.UserID
		write.Assignee = &assignee
	}
	if err := s.arrival.Write(ctx, write); err != nil {
		return nil, false, err
	}

	updated, err := s.repo.GetByID(ctx, emergencyID)
	if err != nil {
		// статус уже подтвержден, возвращаем известное состояние
		s.logger.WithError(err).WithField("emergency_id", emergencyID).Warn("Failed to reload emergency after arrival")
		updated = current.Clone()
		updated.Status = models.StatusArrived
	}
	return updated, true, nil
}

// ResolveEmergency закрывает вызов и освобождает спасателя
func (s *emergencyService) ResolveEmergency(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "ResolveEmergency",
		"emergency_id": emergencyID,
		"actor":        actor.UserID,
	})
	log.Info("Attempting to resolve emergency")

	e, err := s.repo.Mutate(ctx, emergencyID, resolve(actor, s.now()))
	s.metrics.ObserveTransition("resolve", err)
	if err != nil {
		logFailure(log, err, "Failed to resolve emergency")
		return nil, fmt.Errorf("service: could not resolve emergency: %w", err)
	}

	s.effects.Dispatch(ctx, resolvedEffects(e, actor))
	log.Info("Emergency resolved successfully")
	return e, nil
}

// UpdateResponderLocation сохраняет координаты спасателя и сообщает их только заявителю
func (s *emergencyService) UpdateResponderLocation(ctx context.Context, actor models.Actor, emergencyID uuid.UUID, loc models.Location) (*models.Emergency, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "UpdateResponderLocation",
		"emergency_id": emergencyID,
	})
	log.Debug("Updating responder location")

	e, err := s.repo.Mutate(ctx, emergencyID, moveResponder(actor, loc))
	s.metrics.ObserveTransition("location", err)
	if err != nil {
		logFailure(log, err, "Failed to update responder location")
		return nil, fmt.Errorf("service: could not update responder location: %w", err)
	}

	s.effects.Dispatch(ctx, locationEffects(e, s.responderName(ctx, actor, e.ResponderID)))
	return e, nil
}

// MarkFraud помечает вызов как ложный
func (s *emergencyService) MarkFraud(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error) {
	return s.setFraud(ctx, actor, emergencyID, true)
}

// UnmarkFraud снимает пометку
func (s *emergencyService) UnmarkFraud(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error) {
	return s.setFraud(ctx, actor, emergencyID, false)
}

func (s *emergencyService) setFraud(ctx context.Context, actor models.Actor, emergencyID uuid.UUID, fraud bool) (*models.Emergency, error) {
	transition := "unmark_fraud"
	if fraud {
		transition = "mark_fraud"
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "setFraud",
		"emergency_id": emergencyID,
		"fraud":        fraud,
		"actor":        actor.UserID,
	})
	log.Info("Attempting to change fraud flag")

	e, err := s.repo.Mutate(ctx, emergencyID, flagFraud(actor, fraud))
	s.metrics.ObserveTransition(transition, err)
	if err != nil {
		logFailure(log, err, "Failed to change fraud flag")
		return nil, fmt.Errorf("service: could not change fraud flag: %w", err)
	}

	s.effects.Dispatch(ctx, fraudEffects(e, actor))
	log.Info("Fraud flag changed successfully")
	return e, nil
}

// GetEmergency карточка вызова для участников и администраторов
func (s *emergencyService) GetEmergency(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) (*models.Emergency, error) {
	e, err := s.repo.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get emergency: %w", err)
	}
	if err := authorize(capView, actor, e); err != nil {
		return nil, err
	}
	return e, nil
}

// MyActiveEmergency активный вызов текущего пользователя
func (s *emergencyService) MyActiveEmergency(ctx context.Context, actor models.Actor) (*models.Emergency, error) {
	id, err := s.direct.ActiveEmergencyForReporter(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: could not find active emergency: %w", err)
	}
	if id == nil {
		return nil, apperr.ErrEmergencyNotFound.With("no active emergency")
	}
	return s.GetEmergency(ctx, actor, *id)
}

// GetHistory журнал вызова в порядке записи
func (s *emergencyService) GetHistory(ctx context.Context, actor models.Actor, emergencyID uuid.UUID) ([]*models.HistoryEntry, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "GetHistory",
		"emergency_id": emergencyID,
	})

	if _, err := s.GetEmergency(ctx, actor, emergencyID); err != nil {
		logFailure(log, err, "History access rejected")
		return nil, err
	}
	entries, err := s.history.ListFor(ctx, emergencyID)
	if err != nil {
		log.WithError(err).Error("Failed to list history")
		return nil, fmt.Errorf("service: could not list history: %w", err)
	}
	return entries, nil
}

// ListHistorySummaries последнее событие по каждому вызову
func (s *emergencyService) ListHistorySummaries(ctx context.Context, actor models.Actor, limit int) ([]*models.HistorySummary, error) {
	if err := authorize(capOversee, actor, nil); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.summaryLimit
	}
	if limit <= 0 || limit > maxSummaryLimit {
		limit = maxSummaryLimit
	}
	summaries, err := s.history.ListAllSummaries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: could not list history summaries: %w", err)
	}
	return summaries, nil
}

// ListPending очередь ожидания для спасателей
func (s *emergencyService) ListPending(ctx context.Context, actor models.Actor) ([]*models.PendingEmergency, error) {
	if err := authorize(capListPending, actor, nil); err != nil {
		return nil, err
	}
	list, err := s.direct.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list pending emergencies: %w", err)
	}
	return list, nil
}

func (s *emergencyService) ListActive(ctx context.Context, actor models.Actor) ([]*models.Emergency, error) {
	if err := authorize(capOversee, actor, nil); err != nil {
		return nil, err
	}
	list, err := s.direct.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list active emergencies: %w", err)
	}
	return list, nil
}

func (s *emergencyService) ListFraud(ctx context.Context, actor models.Actor) ([]*models.Emergency, error) {
	if err := authorize(capOversee, actor, nil); err != nil {
		return nil, err
	}
	list, err := s.direct.ListFraud(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list fraud emergencies: %w", err)
	}
	return list, nil
}

// SetResponderStatus статус, выставленный самим спасателем
func (s *emergencyService) SetResponderStatus(ctx context.Context, actor models.Actor, status models.ResponderStatus) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "emergency",
		"method":       "SetResponderStatus",
		"responder_id": actor.UserID,
		"status":       status,
	})
	log.Info("Attempting to change responder status")

	err := authorize(capSelfStatus, actor, nil)
	if err == nil && !status.SelfReportable() {
		err = apperr.ErrInvalidInput.With("status %q cannot be set directly", status)
	}
	if err == nil {
		err = s.repo.SetResponderStatus(ctx, actor.UserID, status)
	}
	s.metrics.ObserveTransition("responder_status", err)
	if err != nil {
		logFailure(log, err, "Failed to change responder status")
		return fmt.Errorf("service: could not change responder status: %w", err)
	}

	s.effects.Dispatch(ctx, []Effect{
		EmitEffect{Event: models.EventResponderStatus, Admin: true, Data: responderStatusData(actor.UserID, status)},
	})
	log.Info("Responder status changed successfully")
	return nil
}

// responderName имя для журнала: берется у самого спасателя или запрашивается
func (s *emergencyService) responderName(ctx context.Context, actor models.Actor, responderID *uuid.UUID) string {
	if responderID == nil {
		return ""
	}
	if actor.UserID == *responderID && actor.Name != "" {
		return actor.Name
	}
	u, err := s.direct.FindUserByID(ctx, *responderID)
	if err != nil || u == nil {
		if err != nil {
			s.logger.WithError(err).WithField("responder_id", *responderID).Warn("Failed to resolve responder name")
		}
		return ""
	}
	return u.Name
}
