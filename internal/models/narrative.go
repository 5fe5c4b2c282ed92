package models

// RiskAssessment - оценка риска внутри нарративного отчёта
type RiskAssessment struct {
	RiskLevel RiskLevel `json:"risk_level"`
	RiskScore float64   `json:"risk_score"`
	Drivers   []string  `json:"drivers"`
}

// Remedy - одна рекомендованная мера с приоритетом и ответственным
type Remedy struct {
	Priority  string `json:"priority"`
	Action    string `json:"action"`
	Owner     string `json:"owner"`
	Timeframe string `json:"timeframe"`
	Rationale string `json:"rationale"`
}

// NarrativeReport - структурированный отчёт от сервиса генерации текста.
// Необязателен: его отсутствие не блокирует сохранение инцидента.
type NarrativeReport struct {
	Title               string         `json:"title"`
	Summary             string         `json:"summary"`
	RiskAssessment      RiskAssessment `json:"risk_assessment"`
	RecommendedRemedies []Remedy       `json:"recommended_remedies"`
	MonitoringWindow    []string       `json:"monitoring_window"`
	Notes               string         `json:"notes,omitempty"`
}
