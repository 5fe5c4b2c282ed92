package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentKind различает простые наблюдения и прогнозные отчёты
type IncidentKind string

const (
	IncidentBasic    IncidentKind = "basic"
	IncidentModelled IncidentKind = "modelled"
)

// Incident - одна сохранённая заявка пользователя. Единое tagged-variant
// представление: поля basic и modelled опциональны, Kind определяет вариант.
// Запись создаётся один раз при сохранении и больше не изменяется.
type Incident struct {
	ID      uuid.UUID    `json:"id"`
	OwnerID uuid.UUID    `json:"owner_id"`
	Kind    IncidentKind `json:"kind"`

	// Поля простого инцидента
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
	Photo       string  `json:"photo,omitempty"`

	// Поля прогнозного отчёта
	Features  *FeatureSet      `json:"features,omitempty"`
	Inference *InferenceResult `json:"inference,omitempty"`
	Narrative *NarrativeReport `json:"narrative,omitempty"`

	RegionName string    `json:"region_name,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
	RecordedAt time.Time `json:"recorded_at"`
}
