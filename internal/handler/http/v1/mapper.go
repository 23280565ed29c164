package v1

import "github.com/shenikar/emergency_dispatch_system/internal/models"

// DTOToNewEmergency преобразует DTO создания в входные данные сервиса
func DTOToNewEmergency(dto CreateEmergencyRequest) models.NewEmergency {
	return models.NewEmergency{
		Type:        models.EmergencyType(dto.Type),
		Description: dto.Description,
		Location:    models.Location{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
	}
}

// DTOToLocation преобразует координаты из запроса
func DTOToLocation(dto LocationRequest) models.Location {
	return models.Location{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
}

// ModelToUserResponse преобразует пользователя в DTO без секретов
func ModelToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Phone:           u.Phone,
		Role:            string(u.Role),
		ResponderStatus: string(u.ResponderStatus),
	}
}

// ModelToEmergencyResponse преобразует доменную модель в DTO для ответа
func ModelToEmergencyResponse(e *models.Emergency) *EmergencyResponse {
	resp := &EmergencyResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		Description: e.Description,
		Location:    LocationResponse{Latitude: e.Location.Latitude, Longitude: e.Location.Longitude},
		Priority:    e.Priority,
		Status:      string(e.Status),
		IsFraud:     e.IsFraud,
		ReporterID:  e.ReporterID,
		ResponderID: e.ResponderID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		ResolvedAt:  e.ResolvedAt,
	}
	if e.ResponderLocation != nil {
		resp.ResponderLocation = &LocationResponse{
			Latitude:  e.ResponderLocation.Latitude,
			Longitude: e.ResponderLocation.Longitude,
		}
	}
	return resp
}

// ModelsToEmergencyResponses преобразует слайс моделей в слайс DTO
func ModelsToEmergencyResponses(list []*models.Emergency) []*EmergencyResponse {
	responses := make([]*EmergencyResponse, len(list))
	for i, e := range list {
		responses[i] = ModelToEmergencyResponse(e)
	}
	return responses
}

func ModelsToPendingResponses(list []*models.PendingEmergency) []*PendingEmergencyResponse {
	responses := make([]*PendingEmergencyResponse, len(list))
	for i, p := range list {
		responses[i] = &PendingEmergencyResponse{
			EmergencyResponse: *ModelToEmergencyResponse(&p.Emergency),
			ReporterName:      p.ReporterName,
			ReporterPhone:     p.ReporterPhone,
		}
	}
	return responses
}

func ModelsToHistoryResponses(list []*models.HistoryEntry) []*HistoryEntryResponse {
	responses := make([]*HistoryEntryResponse, len(list))
	for i, h := range list {
		responses[i] = &HistoryEntryResponse{
			ID:          h.ID,
			EmergencyID: h.EmergencyID,
			EventType:   string(h.EventType),
			Payload:     h.Payload,
			CreatedAt:   h.CreatedAt,
		}
	}
	return responses
}

func ModelsToSummaryResponses(list []*models.HistorySummary) []*HistorySummaryResponse {
	responses := make([]*HistorySummaryResponse, len(list))
	for i, s := range list {
		responses[i] = &HistorySummaryResponse{
			EmergencyID:        s.EmergencyID,
			EmergencyType:      string(s.EmergencyType),
			Status:             string(s.Status),
			EmergencyCreatedAt: s.EmergencyAt,
			LastEventType:      string(s.LastEventType),
			LastEventAt:        s.LastEventAt,
			LastEventPayload:   s.LastEventDetail,
		}
	}
	return responses
}
