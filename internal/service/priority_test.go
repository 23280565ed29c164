package service

import (
	"testing"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDerivePriority(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      *models.EmergencyContext
		expected int
	}{
		{
			name:     "special circumstance wins",
			ctx:      &models.EmergencyContext{SpecialCircumstances: []string{"pregnant"}, MedicalConditions: []string{"asthma"}},
			expected: models.PriorityCritical,
		},
		{
			name:     "none is not a circumstance",
			ctx:      &models.EmergencyContext{SpecialCircumstances: []string{"NONE", " "}, MedicalConditions: []string{"epilepsy"}},
			expected: models.PriorityElevated,
		},
		{
			name:     "none is not a condition",
			ctx:      &models.EmergencyContext{MedicalConditions: []string{"none"}},
			expected: models.PriorityNormal,
		},
		{
			name:     "empty profile",
			ctx:      &models.EmergencyContext{},
			expected: models.PriorityNormal,
		},
		{
			name:     "no profile",
			expected: models.PriorityNormal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DerivePriority(tc.ctx))
		})
	}
}
