package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
)

// statusFor переводит класс ошибки в HTTP-статус. Отдельные коды уточняют класс.
func statusFor(e *apperr.Error) int {
	switch e.Code {
	case apperr.ErrResponderNotQualified.Code:
		return http.StatusUnprocessableEntity
	case apperr.ErrInvalidInput.Code:
		return http.StatusBadRequest
	}

	switch e.Kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidState, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindTransientStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody скрывает подробности внутренних ошибок от клиента
func errorBody(e *apperr.Error) ErrorResponse {
	msg := e.Message
	if e.Kind == apperr.KindInternal {
		msg = apperr.ErrInternal.Message
		if e.Code == apperr.ErrArrivalNotPersisted.Code {
			msg = apperr.ErrArrivalNotPersisted.Message
		}
	}
	return ErrorResponse{Error: ErrorBody{Code: e.Code, Message: msg}}
}

func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := statusFor(e)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, errorBody(e))
}

func abortWithError(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{Code: apperr.ErrInvalidInput.Code, Message: message}})
}
