package v1

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest DTO для входа
// @Description DTO для входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse DTO с токеном и профилем
// @Description DTO с токеном и профилем
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse DTO пользователя
// @Description DTO пользователя
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone,omitempty"`
	Role            string    `json:"role"`
	ResponderStatus string    `json:"responder_status,omitempty"`
}

// CreateEmergencyRequest DTO для создания вызова
// @Description DTO для создания вызова
type CreateEmergencyRequest struct {
	Type        string   `json:"type" validate:"required,oneof=medical fire flood earthquake sos citizen_report"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
}

// AssignResponderRequest DTO для назначения спасателя
// @Description DTO для назначения спасателя
type AssignResponderRequest struct {
	ResponderID string `json:"responder_id" validate:"required,uuid"`
}

// LocationRequest DTO с координатами спасателя
// @Description DTO с координатами спасателя
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// ResponderStatusRequest DTO для смены статуса спасателем
// @Description DTO для смены статуса спасателем
type ResponderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available vehicle_unavailable offline"`
}

// LocationResponse координаты
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EmergencyResponse DTO для ответа с информацией о вызове
// @Description DTO для ответа с информацией о вызове
type EmergencyResponse struct {
	ID                uuid.UUID         `json:"id"`
	Type              string            `json:"type"`
	Description       string            `json:"description,omitempty"`
	Location          LocationResponse  `json:"location"`
	Priority          int               `json:"priority"`
	Status            string            `json:"status"`
	IsFraud           bool              `json:"is_fraud"`
	ReporterID        uuid.UUID         `json:"reporter_id"`
	ResponderID       *uuid.UUID        `json:"responder_id,omitempty"`
	ResponderLocation *LocationResponse `json:"responder_location,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	ResolvedAt        *time.Time        `json:"resolved_at,omitempty"`
}

// PendingEmergencyResponse вызов из очереди с контактами заявителя
// @Description вызов из очереди с контактами заявителя
type PendingEmergencyResponse struct {
	EmergencyResponse
	ReporterName  string `json:"reporter_name"`
	ReporterPhone string `json:"reporter_phone,omitempty"`
}

// HistoryEntryResponse запись журнала
// @Description запись журнала
type HistoryEntryResponse struct {
	ID          uuid.UUID      `json:"id"`
	EmergencyID uuid.UUID      `json:"emergency_id"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
}

// HistorySummaryResponse последнее событие по вызову
// @Description последнее событие по вызову
type HistorySummaryResponse struct {
	EmergencyID        uuid.UUID      `json:"emergency_id"`
	EmergencyType      string         `json:"emergency_type"`
	Status             string         `json:"status"`
	EmergencyCreatedAt time.Time      `json:"emergency_created_at"`
	LastEventType      string         `json:"last_event_type"`
	LastEventAt        time.Time      `json:"last_event_at"`
	LastEventPayload   map[string]any `json:"last_event_payload,omitempty"`
}

// ResponderStatusResponse подтверждение статуса спасателя
type ResponderStatusResponse struct {
	ResponderID uuid.UUID `json:"responder_id"`
	Status      string    `json:"status"`
}

// ErrorBody стабильный код и сообщение
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse формат всех ошибок API
// @Description формат всех ошибок API
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
