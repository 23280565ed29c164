package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind класс ошибки, по которому клиент решает, что делать дальше
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindConflict
	KindForbidden
	KindUnauthorized
	KindTransientStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransientStorage:
		return "transient_storage"
	default:
		return "internal"
	}
}

// Error доменная ошибка со стабильным кодом
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по коду, чтобы errors.Is работал с обернутыми копиями
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// With возвращает копию ошибки с уточненным сообщением, сохраняя код
func (e *Error) With(format string, args ...any) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

var (
	ErrEmergencyNotFound      = New(KindNotFound, "EMERGENCY_NOT_FOUND", "emergency not found")
	ErrUserNotFound           = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrResponderNotFound      = New(KindNotFound, "RESPONDER_NOT_FOUND", "responder not found")
	ErrEmergencyResolved      = New(KindInvalidState, "EMERGENCY_RESOLVED", "emergency is already resolved")
	ErrResponderNotQualified  = New(KindInvalidState, "RESPONDER_NOT_QUALIFIED", "responder is not qualified for this emergency type")
	ErrActiveEmergencyExists  = New(KindConflict, "ACTIVE_EMERGENCY_EXISTS", "reporter already has an active emergency")
	ErrVehicleUnavailable     = New(KindConflict, "RESPONDER_VEHICLE_UNAVAILABLE", "responder vehicle is unavailable")
	ErrResponderNotAvailable  = New(KindConflict, "RESPONDER_NOT_AVAILABLE", "responder is not available")
	ErrResponderHasAssignment = New(KindConflict, "RESPONDER_HAS_ACTIVE_ASSIGNMENT", "responder has an active assignment")
	ErrForbidden              = New(KindForbidden, "FORBIDDEN", "action not permitted for this user")
	ErrUnauthorized           = New(KindUnauthorized, "UNAUTHORIZED", "authentication required")
	ErrInvalidCredentials     = New(KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrStorageUnavailable     = New(KindTransientStorage, "STORAGE_UNAVAILABLE", "storage temporarily unavailable, retry later")
	ErrInternal               = New(KindInternal, "INTERNAL", "internal error")
	ErrArrivalNotPersisted    = New(KindInternal, "ARRIVAL_NOT_PERSISTED", "arrival could not be persisted")
	ErrRetriesExhausted       = New(KindInternal, "STORAGE_RETRIES_EXHAUSTED", "storage failed after retries")
	ErrInvalidInput           = New(KindInvalidState, "INVALID_INPUT", "invalid input")
)

// KindOf классифицирует любую ошибку. Истечение контекста считается временной ошибкой хранилища.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransientStorage
	}
	return KindInternal
}

// From приводит произвольную ошибку к *Error; неизвестные становятся INTERNAL
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTransientStorage, ErrStorageUnavailable.Code, ErrStorageUnavailable.Message, err)
	}
	return Wrap(KindInternal, ErrInternal.Code, ErrInternal.Message, err)
}
