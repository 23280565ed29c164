package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("service: assign: %w", ErrVehicleUnavailable.With("responder %s vehicle is unavailable", "x"))

	assert.True(t, errors.Is(wrapped, ErrVehicleUnavailable))
	assert.False(t, errors.Is(wrapped, ErrResponderNotAvailable))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTransientStorage, KindOf(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(ErrEmergencyNotFound))
}

func TestFrom(t *testing.T) {
	e := From(errors.New("boom"))
	assert.Equal(t, "INTERNAL", e.Code)

	e = From(fmt.Errorf("x: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTransientStorage, e.Kind)
	assert.Equal(t, "STORAGE_UNAVAILABLE", e.Code)

	e = From(ErrForbidden)
	assert.Same(t, ErrForbidden, e)
}

func TestWith_KeepsOriginalUntouched(t *testing.T) {
	custom := ErrEmergencyNotFound.With("emergency %d not found", 7)

	assert.Equal(t, "emergency 7 not found", custom.Message)
	assert.Equal(t, "emergency not found", ErrEmergencyNotFound.Message)
	assert.True(t, errors.Is(custom, ErrEmergencyNotFound))
}
