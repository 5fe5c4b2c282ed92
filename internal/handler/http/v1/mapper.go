package v1

import "github.com/nereus-app/coastal_risk_system/internal/models"

// ModelToUserResponse преобразует доменную модель пользователя в DTO
func ModelToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ModelToIncidentResponse преобразует доменную модель инцидента в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:          model.ID,
		OwnerID:     model.OwnerID,
		Kind:        model.Kind,
		Type:        model.Type,
		Description: model.Description,
		Location:    model.Location,
		Lat:         model.Lat,
		Lng:         model.Lng,
		Photo:       model.Photo,
		Features:    model.Features,
		Inference:   model.Inference,
		Narrative:   model.Narrative,
		RegionName:  model.RegionName,
		ObservedAt:  model.ObservedAt,
		RecordedAt:  model.RecordedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelsToAlertResponses преобразует слайс оповещений в слайс DTO
func ModelsToAlertResponses(alerts []*models.Alert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = &AlertResponse{
			ID:          alert.ID,
			Title:       alert.Title,
			Description: alert.Description,
			Location:    alert.Location,
			Severity:    alert.Severity,
			Timestamp:   alert.Timestamp,
		}
	}
	return responses
}
