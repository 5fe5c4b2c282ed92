package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/sirupsen/logrus"
)

// regionUnknown используется, когда у инцидента не указан регион
const regionUnknown = "Unknown"

// Summarize пересчитывает сводку по инцидентам пользователя при каждом вызове.
// Кэширования нет, поэтому нет и логики инвалидации.
//
// Среднее считается по всем инцидентам: запись с неудачным или отсутствующим
// инференсом добавляет 0 в числитель, но входит в знаменатель. Это смещает
// среднее вниз; поведение унаследовано и менять его - продуктовое решение.
func (s *assessmentService) Summarize(ctx context.Context, ownerID uuid.UUID) (*models.AnalyticsSnapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "assessment",
		"method":   "Summarize",
		"owner_id": ownerID,
	})

	incidents, err := s.incidents.ListByOwner(ctx, ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents for analytics")
		return nil, fmt.Errorf("service: could not compute analytics: %w", err)
	}

	snapshot := &models.AnalyticsSnapshot{
		Total:    len(incidents),
		ByRegion: make([]models.RegionCount, 0),
		Series:   make([]models.SeriesPoint, 0, len(incidents)),
	}

	var riskSum float64
	regions := make(map[string]int)
	for _, incident := range incidents {
		risk := 0.0
		if incident.Inference != nil && incident.Inference.OK() {
			risk = incident.Inference.RiskScore
		}
		riskSum += risk

		region := incident.RegionName
		if region == "" {
			region = regionUnknown
		}
		regions[region]++

		snapshot.Series = append(snapshot.Series, models.SeriesPoint{
			T:    incident.ObservedAt,
			Risk: risk,
		})
	}

	if snapshot.Total > 0 {
		snapshot.AverageRiskScore = riskSum / float64(snapshot.Total)
	}

	for region, count := range regions {
		snapshot.ByRegion = append(snapshot.ByRegion, models.RegionCount{
			Region: region,
			Count:  count,
		})
	}

	// Временной ряд отдается по возрастанию времени для построения графиков
	sort.Slice(snapshot.Series, func(i, j int) bool {
		return snapshot.Series[i].T.Before(snapshot.Series[j].T)
	})

	log.WithField("total", snapshot.Total).Debug("Analytics snapshot computed")
	return snapshot, nil
}
