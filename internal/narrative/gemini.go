package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Enricher - клиент сервиса генерации нарративных отчётов (Gemini).
// Создаётся только при наличии API-ключа; nil-обогатитель означает
// "сервис не настроен", и пайплайн продолжает работу без отчёта.
// Любая ошибка сервиса или отклонение ответа от контракта даёт nil:
// обогащение никогда не блокирует сохранение инцидента.
type Enricher struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewEnricher создает клиент Gemini
func NewEnricher(ctx context.Context, apiKey, model string, timeout time.Duration, logger *logrus.Logger) (*Enricher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("narrative API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Enricher{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Enrich запрашивает структурированный отчёт по признакам и результату инференса.
// Возвращает nil при любой ошибке сервиса или некорректной форме ответа.
func (e *Enricher) Enrich(ctx context.Context, features models.FeatureSet, inference models.InferenceResult) *models.NarrativeReport {
	log := e.logger.WithField("component", "narrative")

	prompt, err := buildPrompt(features, inference)
	if err != nil {
		log.WithError(err).Error("Failed to build narrative prompt")
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Models.GenerateContent(callCtx,
		e.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		log.WithError(err).Warn("Narrative service call failed")
		return nil
	}

	text := resp.Text()
	if text == "" {
		log.Warn("Narrative service returned an empty response")
		return nil
	}

	report, err := ParseReport([]byte(text))
	if err != nil {
		log.WithError(err).Warn("Narrative service returned a malformed report")
		return nil
	}
	return report
}

// ParseReport разбирает JSON отчёта и проверяет обязательные поля.
// Отклонение от документированной формы - ошибка обогащения.
func ParseReport(data []byte) (*models.NarrativeReport, error) {
	var report models.NarrativeReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report JSON: %w", err)
	}

	if report.Title == "" || report.Summary == "" {
		return nil, fmt.Errorf("report is missing title or summary")
	}
	switch report.RiskAssessment.RiskLevel {
	case models.RiskSafe, models.RiskCaution, models.RiskDangerous:
	default:
		return nil, fmt.Errorf("report has unknown risk level %q", report.RiskAssessment.RiskLevel)
	}

	return &report, nil
}

// buildPrompt собирает промпт с жёстко заданной JSON-формой ответа
func buildPrompt(features models.FeatureSet, inference models.InferenceResult) (string, error) {
	featureJSON, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a coastal resilience expert. Create a concise, structured report to brief
disaster management teams. Use the inputs and predicted risk to:
1) Summarize the situation and likely causes.
2) Assess immediate risk to life & ecosystems, esp. blue carbon (mangroves, seagrass).
3) Recommend concrete, prioritized remedies (operational & community actions) to protect blue carbon.
4) Suggest monitoring & data needs for the next 24-72 hours.

Return ONLY valid JSON with the following shape:
{
  "title": "string",
  "summary": "string",
  "risk_assessment": {
    "risk_level": "Safe | Caution | Dangerous",
    "risk_score": 0.0,
    "drivers": ["string"]
  },
  "recommended_remedies": [
    {
      "priority": "High | Medium | Low",
      "action": "string",
      "owner": "Agency/Role",
      "timeframe": "Immediate | 24h | 72h",
      "rationale": "string"
    }
  ],
  "monitoring_window": ["string"],
  "notes": "string"
}

Inputs:
%s
Prediction:
- risk_level: %s
- risk_score: %.3f
`, featureJSON, inference.PredictedLabel, inference.RiskScore), nil
}
