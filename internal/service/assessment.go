package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/nereus-app/coastal_risk_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт append-only хранилища инцидентов
type IncidentRepository interface {
	Append(ctx context.Context, incident *models.Incident) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Incident, error)
}

// AlertRepository определяет контракт для публичной ленты оповещений
type AlertRepository interface {
	List(ctx context.Context) ([]*models.Alert, error)
}

// InferenceClient определяет контракт внешнего движка инференса.
// Реализация обязана нормализовать любой сбой движка в InferenceResult
// с заполненным Error и не возвращать ошибок пайплайну.
type InferenceClient interface {
	Predict(ctx context.Context, features models.FeatureSet) models.InferenceResult
}

// NarrativeEnricher определяет контракт сервиса генерации отчётов.
// nil-результат означает, что отчёта нет, и это не ошибка.
type NarrativeEnricher interface {
	Enrich(ctx context.Context, features models.FeatureSet, inference models.InferenceResult) *models.NarrativeReport
}

// BasicIncidentInput - данные простого инцидента без инференса
type BasicIncidentInput struct {
	Type        string
	Description string
	Location    string
	Lat         float64
	Lng         float64
	Photo       string
}

// AssessmentService определяет контракт пайплайна оценки рисков
type AssessmentService interface {
	SubmitBasic(ctx context.Context, ownerID uuid.UUID, input BasicIncidentInput) (*models.Incident, error)
	SubmitReport(ctx context.Context, ownerID uuid.UUID, features models.FeatureSet) (*models.Incident, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]*models.Incident, error)
	Summarize(ctx context.Context, ownerID uuid.UUID) (*models.AnalyticsSnapshot, error)
	Predict(ctx context.Context, features models.FeatureSet) (models.InferenceResult, error)
	Report(ctx context.Context, features models.FeatureSet, level models.RiskLevel, score float64) (*models.NarrativeReport, error)
	ListAlerts(ctx context.Context) ([]*models.Alert, error)
}

type assessmentService struct {
	incidents IncidentRepository
	alerts    AlertRepository
	inference InferenceClient
	enricher  NarrativeEnricher // nil, если сервис генерации не настроен
	publisher webhook.AlertPublisher
	logger    *logrus.Logger
}

func NewAssessmentService(
	incidents IncidentRepository,
	alerts AlertRepository,
	inference InferenceClient,
	enricher NarrativeEnricher,
	publisher webhook.AlertPublisher,
	logger *logrus.Logger,
) AssessmentService {
	return &assessmentService{
		incidents: incidents,
		alerts:    alerts,
		inference: inference,
		enricher:  enricher,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitBasic сохраняет простой инцидент без обращения к внешним сервисам
func (s *assessmentService) SubmitBasic(ctx context.Context, ownerID uuid.UUID, input BasicIncidentInput) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "assessment",
		"method":   "SubmitBasic",
		"owner_id": ownerID,
	})
	log.Info("Attempting to submit a basic incident")

	if input.Type == "" || input.Description == "" {
		return nil, fmt.Errorf("%w: type and description are required", ErrInvalidInput)
	}

	incident := &models.Incident{
		OwnerID:     ownerID,
		Kind:        models.IncidentBasic,
		Type:        input.Type,
		Description: input.Description,
		Location:    input.Location,
		Lat:         input.Lat,
		Lng:         input.Lng,
		Photo:       input.Photo,
	}
	if err := s.incidents.Append(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to append incident to repository")
		return nil, fmt.Errorf("service: could not append incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Basic incident submitted successfully")
	return incident, nil
}

// SubmitReport прогоняет полный пайплайн оценки:
// валидация -> инференс -> обогащение -> сборка записи -> сохранение.
// Сбой инференса фиксируется в записи и не прерывает пайплайн; отсутствие
// нарративного отчёта также не блокирует сохранение.
func (s *assessmentService) SubmitReport(ctx context.Context, ownerID uuid.UUID, features models.FeatureSet) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "assessment",
		"method":   "SubmitReport",
		"owner_id": ownerID,
	})
	log.Info("Attempting to submit a modelled report")

	// Fail fast: при отсутствии обязательных полей внешние вызовы не выполняются
	if missing := features.MissingNumericFields(); len(missing) > 0 {
		log.WithField("missing", missing).Warn("Report rejected: missing mandatory numeric fields")
		return nil, fmt.Errorf("%w: missing required fields: %v", ErrInvalidInput, missing)
	}

	inference := s.inference.Predict(ctx, features)
	if !inference.OK() {
		log.WithField("raw", inference.Raw).Warn("Inference engine unavailable, recording failure as data")
	}

	var narrative *models.NarrativeReport
	if s.enricher != nil && inference.OK() {
		narrative = s.enricher.Enrich(ctx, features, inference)
	}

	incident := &models.Incident{
		OwnerID:    ownerID,
		Kind:       models.IncidentModelled,
		Features:   &features,
		Inference:  &inference,
		Narrative:  narrative,
		RegionName: features.RegionName,
		ObservedAt: observedAt(features),
	}
	if err := s.incidents.Append(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to append incident to repository")
		return nil, fmt.Errorf("service: could not append incident: %w", err)
	}

	if inference.OK() && inference.PredictedLabel == models.RiskDangerous {
		event := webhook.AlertEvent{
			IncidentID: incident.ID,
			OwnerID:    ownerID,
			RiskLevel:  inference.PredictedLabel,
			RiskScore:  inference.RiskScore,
			RegionName: incident.RegionName,
			Timestamp:  incident.RecordedAt,
		}
		// Публикация не влияет на результат запроса
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).Error("Failed to publish dangerous assessment alert")
		}
	}

	log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"risk_level":  inference.PredictedLabel,
	}).Info("Modelled report submitted successfully")
	return incident, nil
}

// ListMine возвращает инциденты пользователя, новые первыми
func (s *assessmentService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]*models.Incident, error) {
	incidents, err := s.incidents.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	return incidents, nil
}

// Predict выполняет только инференс без сохранения
func (s *assessmentService) Predict(ctx context.Context, features models.FeatureSet) (models.InferenceResult, error) {
	if missing := features.MissingNumericFields(); len(missing) > 0 {
		return models.InferenceResult{}, fmt.Errorf("%w: missing required fields: %v", ErrInvalidInput, missing)
	}
	return s.inference.Predict(ctx, features), nil
}

// Report выполняет только обогащение без сохранения
func (s *assessmentService) Report(ctx context.Context, features models.FeatureSet, level models.RiskLevel, score float64) (*models.NarrativeReport, error) {
	if s.enricher == nil {
		return nil, ErrEnrichmentUnavailable
	}

	report := s.enricher.Enrich(ctx, features, models.InferenceResult{
		PredictedLabel: level,
		RiskScore:      score,
	})
	if report == nil {
		return nil, ErrEnrichmentUnavailable
	}
	return report, nil
}

// ListAlerts возвращает публичную ленту оповещений, новые первыми
func (s *assessmentService) ListAlerts(ctx context.Context) ([]*models.Alert, error) {
	alerts, err := s.alerts.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list alerts from repository")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	return alerts, nil
}

// observedAt берёт момент наблюдения из time_stamp, если он разбирается как RFC3339
func observedAt(features models.FeatureSet) time.Time {
	if features.TimeStamp != "" {
		if t, err := time.Parse(time.RFC3339, features.TimeStamp); err == nil {
			return t
		}
	}
	return time.Time{}
}
