package service

import (
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// capability действие, право на которое проверяется в точке входа
type capability int

const (
	capCreate capability = iota
	capAssign
	capAdvance // accept, arrive
	capResolve
	capUpdateLocation
	capFlagFraud
	capView // карточка и история вызова
	capListPending
	capOversee // сводки и списки для администратора
	capSelfStatus
)

func (c capability) String() string {
	switch c {
	case capCreate:
		return "create"
	case capAssign:
		return "assign"
	case capAdvance:
		return "advance"
	case capResolve:
		return "resolve"
	case capUpdateLocation:
		return "update_location"
	case capFlagFraud:
		return "flag_fraud"
	case capView:
		return "view"
	case capListPending:
		return "list_pending"
	case capOversee:
		return "oversee"
	case capSelfStatus:
		return "self_status"
	default:
		return "unknown"
	}
}

// authorize единственное место, где роль и участие в вызове превращаются в разрешение.
// e равен nil для действий, не относящихся к конкретному вызову.
func authorize(c capability, actor models.Actor, e *models.Emergency) error {
	admin := actor.IsAdmin()
	assigned := e != nil && actor.IsResponder() && e.AssignedTo(actor.UserID)
	reporter := e != nil && e.ReporterID == actor.UserID

	var allowed bool
	switch c {
	case capCreate:
		allowed = true
	case capAssign, capOversee:
		allowed = admin
	case capAdvance, capUpdateLocation:
		allowed = admin || assigned
	case capResolve, capView:
		allowed = admin || assigned || reporter
	case capFlagFraud:
		allowed = admin || (assigned && e.Status != models.StatusResolved)
	case capListPending:
		allowed = admin || actor.IsResponder()
	case capSelfStatus:
		allowed = actor.IsResponder()
	}

	if !allowed {
		return apperr.ErrForbidden.With("%s not permitted for %s", c, actor.Role)
	}
	return nil
}
