package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/nereus-app/coastal_risk_system/internal/service"
	"github.com/nereus-app/coastal_risk_system/internal/service/mocks"
	"github.com/nereus-app/coastal_risk_system/internal/webhook"
	webhook_mocks "github.com/nereus-app/coastal_risk_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type assessmentMocks struct {
	incidents *mocks.MockIncidentRepository
	alerts    *mocks.MockAlertRepository
	inference *mocks.MockInferenceClient
	enricher  *mocks.MockNarrativeEnricher
	publisher *webhook_mocks.MockAlertPublisher
}

// newTestAssessmentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestAssessmentService(t *testing.T) (service.AssessmentService, assessmentMocks) {
	ctrl := gomock.NewController(t)
	m := assessmentMocks{
		incidents: mocks.NewMockIncidentRepository(ctrl),
		alerts:    mocks.NewMockAlertRepository(ctrl),
		inference: mocks.NewMockInferenceClient(ctrl),
		enricher:  mocks.NewMockNarrativeEnricher(ctrl),
		publisher: webhook_mocks.NewMockAlertPublisher(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := service.NewAssessmentService(m.incidents, m.alerts, m.inference, m.enricher, m.publisher, logger)
	return svc, m
}

func floatPtr(v float64) *float64 { return &v }

func validFeatures() models.FeatureSet {
	return models.FeatureSet{
		TideHeight:    floatPtr(1.8),
		WindSpeed:     floatPtr(42),
		SeaTemp:       floatPtr(29.5),
		Rainfall:      floatPtr(120),
		MangroveIndex: floatPtr(0.31),
		RegionName:    "Mumbai",
		TimeStamp:     "2025-07-14T06:30:00Z",
	}
}

func TestSubmitReport_Success_WithNarrative(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	features := validFeatures()
	inference := models.InferenceResult{
		PredictedLabel: models.RiskCaution,
		RiskScore:      0.41,
	}
	report := &models.NarrativeReport{
		Title:   "Elevated tide with onshore winds",
		Summary: "Conditions warrant caution along low-lying stretches.",
	}

	// Ожидания
	m.inference.EXPECT().Predict(ctx, features).Return(inference).Times(1)
	m.enricher.EXPECT().Enrich(ctx, features, inference).Return(report).Times(1)
	m.incidents.EXPECT().
		Append(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			// Симулируем, что хранилище присвоило ID
			inc.ID = uuid.New()
			return nil
		}).Times(1)
	// Уровень Caution не порождает оповещений
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := svc.SubmitReport(ctx, ownerID, features)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentModelled, incident.Kind)
	assert.Equal(t, ownerID, incident.OwnerID)
	assert.Equal(t, inference, *incident.Inference)
	assert.Equal(t, report, incident.Narrative)
	assert.Equal(t, "Mumbai", incident.RegionName)
	assert.Equal(t, "2025-07-14T06:30:00Z", incident.ObservedAt.Format("2006-01-02T15:04:05Z07:00"))
}

func TestSubmitReport_MissingFields_NoExternalCalls(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	features.WindSpeed = nil
	features.Rainfall = nil

	// Ожидания: ни инференс, ни хранилище не должны вызываться
	m.inference.EXPECT().Predict(gomock.Any(), gomock.Any()).Times(0)
	m.enricher.EXPECT().Enrich(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.incidents.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := svc.SubmitReport(ctx, uuid.New(), features)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.ErrorContains(t, err, "wind_speed")
	assert.ErrorContains(t, err, "rainfall")
}

func TestSubmitReport_ZeroValuesAreValid(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := models.FeatureSet{
		TideHeight:    floatPtr(0),
		WindSpeed:     floatPtr(0),
		SeaTemp:       floatPtr(0),
		Rainfall:      floatPtr(0),
		MangroveIndex: floatPtr(0),
	}
	inference := models.InferenceResult{PredictedLabel: models.RiskSafe, RiskScore: 0.02}

	// Ожидания
	m.inference.EXPECT().Predict(ctx, features).Return(inference).Times(1)
	m.enricher.EXPECT().Enrich(ctx, features, inference).Return(nil).Times(1)
	m.incidents.EXPECT().Append(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := svc.SubmitReport(ctx, uuid.New(), features)

	// Проверки
	require.NoError(t, err)
	assert.Nil(t, incident.Narrative)
}

func TestSubmitReport_InferenceFailure_StillPersisted(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	failed := models.InferenceResult{
		Error: models.ErrInferenceUnavailable,
		Raw:   "dial tcp: connection refused",
	}

	// Ожидания: обогащение пропускается, запись сохраняется со сбоем как данными
	m.inference.EXPECT().Predict(ctx, features).Return(failed).Times(1)
	m.enricher.EXPECT().Enrich(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.incidents.EXPECT().
		Append(ctx, gomock.Any()).
		Do(func(ctx context.Context, inc *models.Incident) {
			assert.Equal(t, models.ErrInferenceUnavailable, inc.Inference.Error)
			assert.Nil(t, inc.Narrative)
		}).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := svc.SubmitReport(ctx, uuid.New(), features)

	// Проверки
	require.NoError(t, err)
	assert.False(t, incident.Inference.OK())
}

func TestSubmitReport_Dangerous_PublishesAlert(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	features := validFeatures()
	inference := models.InferenceResult{
		PredictedLabel: models.RiskDangerous,
		RiskScore:      0.93,
	}

	// Ожидания
	m.inference.EXPECT().Predict(ctx, features).Return(inference).Times(1)
	m.enricher.EXPECT().Enrich(ctx, features, inference).Return(nil).Times(1)
	m.incidents.EXPECT().
		Append(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			inc.ID = uuid.New()
			return nil
		}).Times(1)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		Do(func(ctx context.Context, event webhook.AlertEvent) {
			assert.Equal(t, models.RiskDangerous, event.RiskLevel)
			assert.Equal(t, ownerID, event.OwnerID)
			assert.Equal(t, "Mumbai", event.RegionName)
		}).Return(nil).Times(1)

	// Действие
	_, err := svc.SubmitReport(ctx, ownerID, features)

	// Проверки
	require.NoError(t, err)
}

func TestSubmitReport_PublishFailure_DoesNotFailRequest(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	inference := models.InferenceResult{PredictedLabel: models.RiskDangerous, RiskScore: 0.9}

	// Ожидания
	m.inference.EXPECT().Predict(ctx, features).Return(inference).Times(1)
	m.enricher.EXPECT().Enrich(ctx, features, inference).Return(nil).Times(1)
	m.incidents.EXPECT().Append(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(fmt.Errorf("redis down")).Times(1)

	// Действие
	incident, err := svc.SubmitReport(ctx, uuid.New(), features)

	// Проверки
	require.NoError(t, err)
	assert.NotNil(t, incident)
}

func TestSubmitReport_AppendFailure(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	inference := models.InferenceResult{PredictedLabel: models.RiskSafe, RiskScore: 0.1}

	// Ожидания
	m.inference.EXPECT().Predict(ctx, features).Return(inference).Times(1)
	m.enricher.EXPECT().Enrich(ctx, features, inference).Return(nil).Times(1)
	m.incidents.EXPECT().Append(ctx, gomock.Any()).Return(fmt.Errorf("хранилище недоступно")).Times(1)

	// Действие
	incident, err := svc.SubmitReport(ctx, uuid.New(), features)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorContains(t, err, "could not append incident")
}

func TestSubmitReport_WithoutEnricher(t *testing.T) {
	// Подготовка: сервис без настроенного обогащения
	ctrl := gomock.NewController(t)
	incidents := mocks.NewMockIncidentRepository(ctrl)
	inferenceMock := mocks.NewMockInferenceClient(ctrl)
	publisher := webhook_mocks.NewMockAlertPublisher(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	svc := service.NewAssessmentService(incidents, nil, inferenceMock, nil, publisher, logger)

	ctx := context.Background()
	features := validFeatures()
	inference := models.InferenceResult{PredictedLabel: models.RiskSafe, RiskScore: 0.1}

	// Ожидания
	inferenceMock.EXPECT().Predict(ctx, features).Return(inference).Times(1)
	incidents.EXPECT().Append(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := svc.SubmitReport(ctx, uuid.New(), features)

	// Проверки
	require.NoError(t, err)
	assert.Nil(t, incident.Narrative)
}

func TestSubmitBasic_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	input := service.BasicIncidentInput{
		Type:        "flooding",
		Description: "Вода поднялась до набережной",
		Location:    "Marine Drive",
		Lat:         18.94,
		Lng:         72.82,
	}

	// Ожидания
	m.incidents.EXPECT().
		Append(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			inc.ID = uuid.New()
			return nil
		}).Times(1)

	// Действие
	incident, err := svc.SubmitBasic(ctx, ownerID, input)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentBasic, incident.Kind)
	assert.Equal(t, "flooding", incident.Type)
	assert.NotEqual(t, uuid.Nil, incident.ID)
}

func TestSubmitBasic_MissingType(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()

	// Ожидания
	m.incidents.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	incident, err := svc.SubmitBasic(ctx, uuid.New(), service.BasicIncidentInput{Description: "без типа"})

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestPredict_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	expected := models.InferenceResult{PredictedLabel: models.RiskCaution, RiskScore: 0.5}

	// Ожидания
	m.inference.EXPECT().Predict(ctx, features).Return(expected).Times(1)

	// Действие
	result, err := svc.Predict(ctx, features)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestPredict_MissingFields(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	features.TideHeight = nil

	// Ожидания
	m.inference.EXPECT().Predict(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := svc.Predict(ctx, features)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestReport_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()
	expected := &models.NarrativeReport{Title: "Отчёт", Summary: "Сводка"}

	// Ожидания
	m.enricher.EXPECT().
		Enrich(ctx, features, models.InferenceResult{PredictedLabel: models.RiskDangerous, RiskScore: 0.88}).
		Return(expected).Times(1)

	// Действие
	report, err := svc.Report(ctx, features, models.RiskDangerous, 0.88)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, report)
}

func TestReport_EnricherNotConfigured(t *testing.T) {
	// Подготовка: сервис без обогащения
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	svc := service.NewAssessmentService(nil, nil, nil, nil, webhook.NopAlertPublisher{}, logger)

	// Действие
	report, err := svc.Report(context.Background(), validFeatures(), models.RiskSafe, 0.1)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, service.ErrEnrichmentUnavailable)
}

func TestReport_EnricherReturnsNil(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	features := validFeatures()

	// Ожидания
	m.enricher.EXPECT().Enrich(ctx, features, gomock.Any()).Return(nil).Times(1)

	// Действие
	report, err := svc.Report(ctx, features, models.RiskSafe, 0.1)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, service.ErrEnrichmentUnavailable)
}

func TestListMine_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	expected := []*models.Incident{
		{ID: uuid.New(), OwnerID: ownerID},
		{ID: uuid.New(), OwnerID: ownerID},
	}

	// Ожидания
	m.incidents.EXPECT().ListByOwner(ctx, ownerID).Return(expected, nil).Times(1)

	// Действие
	incidents, err := svc.ListMine(ctx, ownerID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestListAlerts_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAssessmentService(t)
	ctx := context.Background()
	expected := []*models.Alert{
		{ID: uuid.New(), Title: "High Tide Advisory"},
	}

	// Ожидания
	m.alerts.EXPECT().List(ctx).Return(expected, nil).Times(1)

	// Действие
	alerts, err := svc.ListAlerts(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, alerts)
}
