package models

import "time"

// RegionCount - количество инцидентов в одном регионе
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// SeriesPoint - одна точка временного ряда риска
type SeriesPoint struct {
	T    time.Time `json:"t"`
	Risk float64   `json:"risk"`
}

// AnalyticsSnapshot - производная сводка по инцидентам одного пользователя.
// Не хранится: пересчитывается из хранилища при каждом запросе.
// AverageRiskScore считается по всем инцидентам: неудачный инференс даёт 0
// в числитель, но учитывается в Total, что смещает среднее вниз.
type AnalyticsSnapshot struct {
	Total            int           `json:"total"`
	AverageRiskScore float64       `json:"average_risk_score"`
	ByRegion         []RegionCount `json:"by_region"`
	Series           []SeriesPoint `json:"series"`
}
