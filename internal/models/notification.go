package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification элемент входящих пользователя; одновременно задание на push
type Notification struct {
	UserID  uuid.UUID         `json:"user_id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Realtime event names
const (
	EventEmergencyNew               = "emergency:new"
	EventEmergencyAssigned          = "emergency:assigned"
	EventEmergencyAccepted          = "emergency:accepted"
	EventEmergencyArrived           = "emergency:arrived"
	EventEmergencyUpdated           = "emergency:updated"
	EventEmergencyResolved          = "emergency:resolved"
	EventEmergencyResponderLocation = "emergency:responderLocation"
	EventEmergencyFraud             = "emergency:fraud"
	EventEmergencyFraudCleared      = "emergency:fraud:cleared"
	EventResponderStatus            = "responder:status"
)

// RealtimeEvent событие для рассылки подключенным клиентам.
// UserIDs - персональные каналы, Admin - общий канал администраторов.
type RealtimeEvent struct {
	Name    string          `json:"event"`
	UserIDs []uuid.UUID     `json:"user_ids,omitempty"`
	Admin   bool            `json:"admin,omitempty"`
	Data    json.RawMessage `json:"data"`
	SentAt  time.Time       `json:"sent_at"`
}
