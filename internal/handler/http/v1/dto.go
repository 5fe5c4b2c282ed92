package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/models"
)

// RegisterRequest DTO для регистрации пользователя
// @Description DTO для регистрации пользователя
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest DTO для входа
// @Description DTO для входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse DTO с публичными данными пользователя
// @Description DTO с публичными данными пользователя
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AuthResponse DTO для ответа с токеном доступа
// @Description DTO для ответа с токеном доступа
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateIncidentRequest DTO для создания простого инцидента
// @Description DTO для создания простого инцидента
type CreateIncidentRequest struct {
	Type        string  `json:"type" validate:"required,min=2,max=255"`
	Description string  `json:"description" validate:"required"`
	Location    string  `json:"location,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
	Photo       string  `json:"photo,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          uuid.UUID               `json:"id"`
	OwnerID     uuid.UUID               `json:"owner_id"`
	Kind        models.IncidentKind     `json:"kind"`
	Type        string                  `json:"type,omitempty"`
	Description string                  `json:"description,omitempty"`
	Location    string                  `json:"location,omitempty"`
	Lat         float64                 `json:"lat,omitempty"`
	Lng         float64                 `json:"lng,omitempty"`
	Photo       string                  `json:"photo,omitempty"`
	Features    *models.FeatureSet      `json:"features,omitempty"`
	Inference   *models.InferenceResult `json:"inference,omitempty"`
	Narrative   *models.NarrativeReport `json:"narrative,omitempty"`
	RegionName  string                  `json:"region_name,omitempty"`
	ObservedAt  time.Time               `json:"observed_at"`
	RecordedAt  time.Time               `json:"recorded_at"`
}

// AlertResponse DTO для записи публичной ленты оповещений
// @Description DTO для записи публичной ленты оповещений
type AlertResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Severity    string    `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
}

// AIReportRequest DTO для запроса нарративного отчёта без сохранения
// @Description DTO для запроса нарративного отчёта без сохранения
type AIReportRequest struct {
	Features           models.FeatureSet `json:"features"`
	PredictedRiskLevel models.RiskLevel  `json:"predicted_risk_level" validate:"required,oneof=Safe Caution Dangerous"`
	RiskScore          float64           `json:"risk_score" validate:"gte=0,lte=1"`
}

// AIReportResponse DTO для ответа с нарративным отчётом
// @Description DTO для ответа с нарративным отчётом
type AIReportResponse struct {
	AIReport *models.NarrativeReport `json:"ai_report"`
}
