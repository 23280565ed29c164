package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// Переходы ниже чистые: они получают заблокированную запись, меняют ее и возвращают
// изменение доступности спасателя. Эффекты строятся отдельно по сохраненной записи.

func ensureOpen(e *models.Emergency) error {
	if e.Status == models.StatusResolved {
		return apperr.ErrEmergencyResolved.With("emergency %s is already resolved", e.ID)
	}
	return nil
}

// checkAssignment решает по заблокированным строкам вызова и спасателя.
// Допуск проверяется раньше доступности: неподходящий спасатель отклоняется при любом статусе.
func checkAssignment(e *models.Emergency, r *models.ResponderAvailability) error {
	if err := ensureOpen(e); err != nil {
		return err
	}
	if !r.Qualified(e.Type) {
		return apperr.ErrResponderNotQualified.With("responder %s is not qualified for %s emergencies", r.ResponderID, e.Type)
	}
	switch r.Status {
	case models.ResponderAvailable:
		return nil
	case models.ResponderVehicleUnavailable:
		return apperr.ErrVehicleUnavailable.With("responder %s vehicle is unavailable", r.ResponderID)
	default:
		return apperr.ErrResponderNotAvailable.With("responder %s is %s", r.ResponderID, r.Status)
	}
}

// accept переводит вызов в accepted. Уже прибывший вызов не откатывается назад.
func accept(actor models.Actor) models.MutateFunc {
	return func(e *models.Emergency) (*models.AvailabilityChange, error) {
		if err := authorize(capAdvance, actor, e); err != nil {
			return nil, err
		}
		if err := ensureOpen(e); err != nil {
			return nil, err
		}
		if e.Status != models.StatusArrived {
			e.Status = models.StatusAccepted
		}
		if e.ResponderID == nil {
			return nil, nil
		}
		return &models.AvailabilityChange{ResponderID: *e.ResponderID, Status: models.ResponderOnDuty}, nil
	}
}

// resolve закрывает вызов и освобождает назначенного спасателя
func resolve(actor models.Actor, now time.Time) models.MutateFunc {
	return func(e *models.Emergency) (*models.AvailabilityChange, error) {
		if err := authorize(capResolve, actor, e); err != nil {
			return nil, err
		}
		if err := ensureOpen(e); err != nil {
			return nil, err
		}
		e.Status = models.StatusResolved
		resolvedAt := now.UTC()
		e.ResolvedAt = &resolvedAt
		if e.ResponderID == nil {
			return nil, nil
		}
		return &models.AvailabilityChange{ResponderID: *e.ResponderID, Status: models.ResponderAvailable}, nil
	}
}

func moveResponder(actor models.Actor, loc models.Location) models.MutateFunc {
	return func(e *models.Emergency) (*models.AvailabilityChange, error) {
		if err := authorize(capUpdateLocation, actor, e); err != nil {
			return nil, err
		}
		if err := ensureOpen(e); err != nil {
			return nil, err
		}
		e.ResponderLocation = &loc
		return nil, nil
	}
}

// flagFraud ставит или снимает пометку. Статус и назначение не меняются.
func flagFraud(actor models.Actor, fraud bool) models.MutateFunc {
	return func(e *models.Emergency) (*models.AvailabilityChange, error) {
		if err := authorize(capFlagFraud, actor, e); err != nil {
			return nil, err
		}
		e.IsFraud = fraud
		return nil, nil
	}
}

func recipients(ids ...*uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != nil && *id != uuid.Nil {
			out = append(out, *id)
		}
	}
	return out
}

func emergencyData(e *models.Emergency) map[string]string {
	return map[string]string{
		"emergency_id": e.ID.String(),
		"type":         string(e.Type),
		"status":       string(e.Status),
	}
}

func createdEffects(e *models.Emergency) []Effect {
	return []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: models.HistoryCreated, Payload: map[string]any{
			"type":        e.Type,
			"priority":    e.Priority,
			"description": e.Description,
			"location":    e.Location,
			"reporter_id": e.ReporterID,
		}},
		NotifyEffect{
			UserIDs: []uuid.UUID{e.ReporterID},
			Type:    "emergency_created",
			Title:   "Emergency received",
			Message: "Your report has been received and is waiting for a responder.",
			Data:    emergencyData(e),
		},
		NotifyEffect{
			Staff:   true,
			Type:    "emergency_new",
			Title:   "New emergency",
			Message: "A new " + string(e.Type) + " emergency was reported.",
			Data:    emergencyData(e),
		},
		EmitEffect{Event: models.EventEmergencyNew, Admin: true, Data: e},
	}
}

func assignedEffects(e *models.Emergency, actor models.Actor, responderName string, released *uuid.UUID) []Effect {
	effects := []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: models.HistoryAssigned, Payload: map[string]any{
			"responder_id":   e.ResponderID,
			"responder_name": responderName,
			"assigned_by":    actor.UserID,
		}},
		NotifyEffect{
			UserIDs: []uuid.UUID{e.ReporterID},
			Type:    "emergency_assigned",
			Title:   "Responder assigned",
			Message: responderName + " has been assigned to your emergency.",
			Data:    emergencyData(e),
		},
		NotifyEffect{
			UserIDs: recipients(e.ResponderID),
			Type:    "assignment_new",
			Title:   "New assignment",
			Message: "You have been assigned to a " + string(e.Type) + " emergency.",
			Data:    emergencyData(e),
		},
		EmitEffect{Event: models.EventEmergencyAssigned, UserIDs: recipients(&e.ReporterID, e.ResponderID), Admin: true, Data: e},
		EmitEffect{Event: models.EventResponderStatus, Admin: true, Data: responderStatusData(*e.ResponderID, models.ResponderOnDuty)},
	}
	if released != nil {
		effects = append(effects, EmitEffect{
			Event: models.EventResponderStatus,
			Admin: true,
			Data:  responderStatusData(*released, models.ResponderAvailable),
		})
	}
	return effects
}

func acceptedEffects(e *models.Emergency, actor models.Actor) []Effect {
	return []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: models.HistoryAccepted, Payload: map[string]any{
			"responder_id": e.ResponderID,
			"accepted_by":  actor.UserID,
		}},
		EmitEffect{Event: models.EventEmergencyAccepted, UserIDs: recipients(&e.ReporterID, e.ResponderID), Admin: true, Data: e},
	}
}

func arrivedEffects(e *models.Emergency, responderName string) []Effect {
	return []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: models.HistoryArrived, Payload: map[string]any{
			"responder_id":   e.ResponderID,
			"responder_name": responderName,
		}},
		NotifyEffect{
			UserIDs: []uuid.UUID{e.ReporterID},
			Type:    "emergency_arrived",
			Title:   "Responder arrived",
			Message: "The responder has arrived at your location.",
			Data:    emergencyData(e),
		},
		EmitEffect{Event: models.EventEmergencyArrived, UserIDs: []uuid.UUID{e.ReporterID}, Admin: true, Data: e},
		EmitEffect{Event: models.EventEmergencyUpdated, UserIDs: recipients(e.ResponderID), Admin: true, Data: e},
	}
}

func resolvedEffects(e *models.Emergency, actor models.Actor) []Effect {
	effects := []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: models.HistoryResolved, Payload: map[string]any{
			"resolved_by":  actor.UserID,
			"responder_id": e.ResponderID,
			"resolved_at":  e.ResolvedAt,
		}},
		NotifyEffect{
			UserIDs: []uuid.UUID{e.ReporterID},
			Type:    "emergency_resolved",
			Title:   "Emergency resolved",
			Message: "Your emergency has been marked as resolved.",
			Data:    emergencyData(e),
		},
		EmitEffect{Event: models.EventEmergencyResolved, UserIDs: []uuid.UUID{e.ReporterID}, Admin: true, Data: e},
	}
	if e.ResponderID != nil {
		effects = append(effects, EmitEffect{
			Event: models.EventResponderStatus,
			Admin: true,
			Data:  responderStatusData(*e.ResponderID, models.ResponderAvailable),
		})
	}
	return effects
}

func locationEffects(e *models.Emergency, responderName string) []Effect {
	return []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: models.HistoryResponderLocation, Payload: map[string]any{
			"latitude":       e.ResponderLocation.Latitude,
			"longitude":      e.ResponderLocation.Longitude,
			"responder_name": responderName,
		}},
		// только заявителю
		EmitEffect{Event: models.EventEmergencyResponderLocation, UserIDs: []uuid.UUID{e.ReporterID}, Data: map[string]any{
			"emergency_id": e.ID,
			"location":     e.ResponderLocation,
		}},
	}
}

func fraudEffects(e *models.Emergency, actor models.Actor) []Effect {
	eventType, event := models.HistoryUnmarkedFraud, models.EventEmergencyFraudCleared
	if e.IsFraud {
		eventType, event = models.HistoryMarkedFraud, models.EventEmergencyFraud
	}
	return []Effect{
		HistoryEffect{EmergencyID: e.ID, EventType: eventType, Payload: map[string]any{
			"by":   actor.UserID,
			"role": actor.Role,
		}},
		EmitEffect{Event: event, Admin: true, Data: e},
	}
}

func responderStatusData(id uuid.UUID, status models.ResponderStatus) map[string]any {
	return map[string]any{
		"responder_id": id,
		"status":       status,
	}
}
