package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	reporter := models.Actor{UserID: uuid.New(), Role: models.RoleResident}
	stranger := models.Actor{UserID: uuid.New(), Role: models.RoleResident}
	assigned := models.Actor{UserID: uuid.New(), Role: models.RoleResponder}
	idle := models.Actor{UserID: uuid.New(), Role: models.RoleResponder}
	admin := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	open := &models.Emergency{
		ID:          uuid.New(),
		Status:      models.StatusAssigned,
		ReporterID:  reporter.UserID,
		ResponderID: &assigned.UserID,
	}
	closed := open.Clone()
	closed.Status = models.StatusResolved

	testCases := []struct {
		name    string
		cap     capability
		actor   models.Actor
		e       *models.Emergency
		allowed bool
	}{
		{"anyone creates", capCreate, stranger, nil, true},
		{"admin assigns", capAssign, admin, nil, true},
		{"responder cannot assign", capAssign, assigned, nil, false},
		{"assigned responder advances", capAdvance, assigned, open, true},
		{"idle responder cannot advance", capAdvance, idle, open, false},
		{"reporter cannot advance", capAdvance, reporter, open, false},
		{"admin advances", capAdvance, admin, open, true},
		{"reporter resolves", capResolve, reporter, open, true},
		{"assigned responder resolves", capResolve, assigned, open, true},
		{"stranger cannot resolve", capResolve, stranger, open, false},
		{"idle responder cannot resolve", capResolve, idle, open, false},
		{"assigned responder moves", capUpdateLocation, assigned, open, true},
		{"reporter cannot move responder", capUpdateLocation, reporter, open, false},
		{"assigned responder flags open", capFlagFraud, assigned, open, true},
		{"assigned responder cannot flag resolved", capFlagFraud, assigned, closed, false},
		{"admin flags resolved", capFlagFraud, admin, closed, true},
		{"reporter cannot flag", capFlagFraud, reporter, open, false},
		{"reporter views", capView, reporter, open, true},
		{"stranger cannot view", capView, stranger, open, false},
		{"responder lists pending", capListPending, idle, nil, true},
		{"resident cannot list pending", capListPending, reporter, nil, false},
		{"admin oversees", capOversee, admin, nil, true},
		{"responder cannot oversee", capOversee, idle, nil, false},
		{"responder reports own status", capSelfStatus, idle, nil, true},
		{"admin has no self status", capSelfStatus, admin, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := authorize(tc.cap, tc.actor, tc.e)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrForbidden)
			assert.Contains(t, err.Error(), tc.cap.String())
		})
	}
}
