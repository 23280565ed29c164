package models

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleResident  Role = "resident"
	RoleResponder Role = "responder"
	RoleAdmin     Role = "admin"
)

// ParseRole приводит значение из БД к известной роли; неизвестное считается жителем
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleResponder:
		return RoleResponder
	default:
		return RoleResident
	}
}

// ResponderStatus доступность спасателя
type ResponderStatus string

const (
	ResponderAvailable          ResponderStatus = "available"
	ResponderOnDuty             ResponderStatus = "on_duty"
	ResponderVehicleUnavailable ResponderStatus = "vehicle_unavailable"
	ResponderOffline            ResponderStatus = "offline"
)

// SelfReportable - статусы, которые спасатель может выставить сам
func (s ResponderStatus) SelfReportable() bool {
	return s == ResponderAvailable || s == ResponderVehicleUnavailable || s == ResponderOffline
}

type User struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	Role            Role            `json:"role"`
	ResponderStatus ResponderStatus `json:"responder_status,omitempty"`
}

// CredentialedUser пользователь вместе с хешем пароля, используется только при входе
type CredentialedUser struct {
	User
	PasswordHash string `json:"-"`
}

// ResponderAvailability денормализованный статус спасателя и его допуски
type ResponderAvailability struct {
	ResponderID    uuid.UUID
	Name           string
	Status         ResponderStatus
	QualifiedTypes []EmergencyType
}

// Qualified - пустой набор допусков означает отсутствие ограничений
func (r *ResponderAvailability) Qualified(t EmergencyType) bool {
	if len(r.QualifiedTypes) == 0 {
		return true
	}
	for _, q := range r.QualifiedTypes {
		if q == t {
			return true
		}
	}
	return false
}

// EmergencyContext данные профиля заявителя, влияющие на приоритет
type EmergencyContext struct {
	Name                 string
	Phone                string
	SpecialCircumstances []string
	MedicalConditions    []string
}

// Actor аутентифицированный пользователь, выполняющий операцию
type Actor struct {
	UserID uuid.UUID
	Role   Role
	Name   string
}

func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsResponder() bool { return a.Role == RoleResponder }
