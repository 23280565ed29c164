package models

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyType категория происшествия
type EmergencyType string

const (
	EmergencyTypeMedical       EmergencyType = "medical"
	EmergencyTypeFire          EmergencyType = "fire"
	EmergencyTypeFlood         EmergencyType = "flood"
	EmergencyTypeEarthquake    EmergencyType = "earthquake"
	EmergencyTypeSOS           EmergencyType = "sos"
	EmergencyTypeCitizenReport EmergencyType = "citizen_report"
)

// EmergencyTypes перечисляет все допустимые категории
var EmergencyTypes = []EmergencyType{
	EmergencyTypeMedical,
	EmergencyTypeFire,
	EmergencyTypeFlood,
	EmergencyTypeEarthquake,
	EmergencyTypeSOS,
	EmergencyTypeCitizenReport,
}

func (t EmergencyType) Valid() bool {
	for _, known := range EmergencyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EmergencyStatus состояние жизненного цикла вызова
type EmergencyStatus string

const (
	StatusPending  EmergencyStatus = "pending"
	StatusAssigned EmergencyStatus = "assigned"
	StatusAccepted EmergencyStatus = "accepted"
	StatusArrived  EmergencyStatus = "arrived"
	StatusResolved EmergencyStatus = "resolved"
)

// Engaged сообщает, занимает ли вызов в этом состоянии назначенного спасателя
func (s EmergencyStatus) Engaged() bool {
	return s == StatusAssigned || s == StatusAccepted || s == StatusArrived
}

// Priority 1 - самый срочный, 3 - обычный
const (
	PriorityCritical = 1
	PriorityElevated = 2
	PriorityNormal   = 3
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Emergency вызов, поданный жителем
type Emergency struct {
	ID                uuid.UUID       `json:"id"`
	Type              EmergencyType   `json:"type"`
	Description       string          `json:"description"`
	Location          Location        `json:"location"`
	Priority          int             `json:"priority"`
	Status            EmergencyStatus `json:"status"`
	IsFraud           bool            `json:"is_fraud"`
	ReporterID        uuid.UUID       `json:"reporter_id"`
	ResponderID       *uuid.UUID      `json:"responder_id,omitempty"`
	ResponderLocation *Location       `json:"responder_location,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty"`
}

// Active - не закрыт и не помечен как ложный
func (e *Emergency) Active() bool {
	return e.Status != StatusResolved && !e.IsFraud
}

// AssignedTo проверяет, что вызов назначен указанному спасателю
func (e *Emergency) AssignedTo(userID uuid.UUID) bool {
	return e.ResponderID != nil && *e.ResponderID == userID
}

// Clone возвращает глубокую копию, чтобы переходы не портили исходную запись
func (e *Emergency) Clone() *Emergency {
	c := *e
	if e.ResponderID != nil {
		id := *e.ResponderID
		c.ResponderID = &id
	}
	if e.ResponderLocation != nil {
		loc := *e.ResponderLocation
		c.ResponderLocation = &loc
	}
	if e.ResolvedAt != nil {
		t := *e.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

// NewEmergency входные данные для создания вызова
type NewEmergency struct {
	Type        EmergencyType
	Description string
	Location    Location
}

// PendingEmergency вызов из очереди ожидания с контактами заявителя
type PendingEmergency struct {
	Emergency
	ReporterName  string `json:"reporter_name"`
	ReporterPhone string `json:"reporter_phone"`
}

// AvailabilityChange изменение статуса спасателя, которое применяется в той же транзакции, что и вызов
type AvailabilityChange struct {
	ResponderID uuid.UUID
	Status      ResponderStatus
}

// MutateFunc применяет переход к заблокированной записи вызова
type MutateFunc func(e *Emergency) (*AvailabilityChange, error)

// AssignCheck проверяет, можно ли назначить спасателя, по строкам, заблокированным в транзакции
type AssignCheck func(e *Emergency, r *ResponderAvailability) error

// StatusWrite условная запись статуса вызова. Если Assignee задан, запись проходит
// только пока вызов назначен именно этому спасателю.
type StatusWrite struct {
	EmergencyID uuid.UUID
	Status      EmergencyStatus
	Assignee    *uuid.UUID
}

// Permits проверяет условие записи по текущему состоянию вызова
func (w StatusWrite) Permits(e *Emergency) bool {
	return w.Assignee == nil || e.AssignedTo(*w.Assignee)
}
