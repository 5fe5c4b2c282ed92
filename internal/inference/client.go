package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Client - HTTP-клиент внешнего движка инференса рисков.
// Любой сбой движка (таймаут, не-200 ответ, нечитаемый JSON) нормализуется
// в InferenceResult с кодом inference_unavailable: для оркестратора это
// обычные данные, а не ошибка.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// predictResponse - контракт ответа движка
type predictResponse struct {
	PredictedRiskLevel string   `json:"predicted_risk_level"`
	RiskScore          *float64 `json:"risk_score"`
}

// NewClient создает клиент движка инференса с ограниченным временем ожидания
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Predict отправляет набор признаков движку и возвращает нормализованный результат.
// Неизвестные поля FeatureSet сериализуются без изменений - движок сам решает,
// что с ними делать.
func (c *Client) Predict(ctx context.Context, features models.FeatureSet) models.InferenceResult {
	log := c.logger.WithField("component", "inference")

	payload, err := json.Marshal(features)
	if err != nil {
		log.WithError(err).Error("Failed to serialize feature set")
		return unavailable(err.Error())
	}

	url := c.baseURL + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.WithError(err).Error("Failed to create inference request")
		return unavailable(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Inference engine call failed")
		return unavailable(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("Failed to read inference response body")
		return unavailable(err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("Inference engine returned non-200 status")
		return unavailable(fmt.Sprintf("status %d: %s", resp.StatusCode, body))
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil || out.PredictedRiskLevel == "" || out.RiskScore == nil {
		log.WithField("body", string(body)).Warn("Inference engine returned malformed output")
		return unavailable(string(body))
	}

	return models.InferenceResult{
		PredictedLabel: models.RiskLevel(out.PredictedRiskLevel),
		RiskScore:      *out.RiskScore,
	}
}

func unavailable(raw string) models.InferenceResult {
	return models.InferenceResult{
		Error: models.ErrInferenceUnavailable,
		Raw:   raw,
	}
}
