package service

import (
	"strings"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// DerivePriority: особое обстоятельство дает 1, медицинское состояние 2, иначе 3.
// Пустые значения и "none" не учитываются.
func DerivePriority(c *models.EmergencyContext) int {
	if c == nil {
		return models.PriorityNormal
	}
	if hasRecorded(c.SpecialCircumstances) {
		return models.PriorityCritical
	}
	if hasRecorded(c.MedicalConditions) {
		return models.PriorityElevated
	}
	return models.PriorityNormal
}

func hasRecorded(values []string) bool {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, "none") {
			return true
		}
	}
	return false
}
