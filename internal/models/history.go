package models

import (
	"time"

	"github.com/google/uuid"
)

type HistoryEventType string

const (
	HistoryCreated           HistoryEventType = "CREATED"
	HistoryAssigned          HistoryEventType = "ASSIGNED"
	HistoryAccepted          HistoryEventType = "ACCEPTED"
	HistoryArrived           HistoryEventType = "ARRIVED"
	HistoryResolved          HistoryEventType = "RESOLVED"
	HistoryMarkedFraud       HistoryEventType = "MARKED_FRAUD"
	HistoryUnmarkedFraud     HistoryEventType = "UNMARKED_FRAUD"
	HistoryResponderLocation HistoryEventType = "RESPONDER_LOCATION"
)

// HistoryEntry неизменяемая запись аудита
type HistoryEntry struct {
	ID          uuid.UUID        `json:"id"`
	EmergencyID uuid.UUID        `json:"emergency_id"`
	EventType   HistoryEventType `json:"event_type"`
	Payload     map[string]any   `json:"payload"`
	CreatedAt   time.Time        `json:"created_at"`
}

// HistorySummary последнее событие по вызову для административного обзора
type HistorySummary struct {
	EmergencyID     uuid.UUID        `json:"emergency_id"`
	EmergencyType   EmergencyType    `json:"emergency_type"`
	Status          EmergencyStatus  `json:"status"`
	EmergencyAt     time.Time        `json:"emergency_created_at"`
	LastEventType   HistoryEventType `json:"last_event_type"`
	LastEventAt     time.Time        `json:"last_event_at"`
	LastEventDetail map[string]any   `json:"last_event_payload"`
}
