package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func floatPtr(v float64) *float64 { return &v }

func testFeatures() models.FeatureSet {
	return models.FeatureSet{
		TideHeight:    floatPtr(1.8),
		WindSpeed:     floatPtr(42),
		SeaTemp:       floatPtr(29.5),
		Rainfall:      floatPtr(120),
		MangroveIndex: floatPtr(0.31),
	}
}

func TestClient_Predict_Success(t *testing.T) {
	// Подготовка
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 1.8, payload["tide_height"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predicted_risk_level": "Dangerous", "risk_score": 0.93}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	// Действие
	result := client.Predict(context.Background(), testFeatures())

	// Проверки
	assert.True(t, result.OK())
	assert.Equal(t, models.RiskDangerous, result.PredictedLabel)
	assert.Equal(t, 0.93, result.RiskScore)
	assert.Empty(t, result.Error)
}

func TestClient_Predict_ZeroScoreIsValid(t *testing.T) {
	// Подготовка: score 0 отличим от отсутствующего поля
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predicted_risk_level": "Safe", "risk_score": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	// Действие
	result := client.Predict(context.Background(), testFeatures())

	// Проверки
	assert.True(t, result.OK())
	assert.Equal(t, models.RiskSafe, result.PredictedLabel)
	assert.Equal(t, 0.0, result.RiskScore)
}

func TestClient_Predict_Non200(t *testing.T) {
	// Подготовка
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	// Действие
	result := client.Predict(context.Background(), testFeatures())

	// Проверки: сбой нормализован в данные, не в ошибку
	assert.False(t, result.OK())
	assert.Equal(t, models.ErrInferenceUnavailable, result.Error)
	assert.Contains(t, result.Raw, "status 500")
	assert.Contains(t, result.Raw, "model not loaded")
}

func TestClient_Predict_MalformedBody(t *testing.T) {
	// Подготовка
	cases := map[string]string{
		"не JSON":            `<html>oops</html>`,
		"нет уровня риска":   `{"risk_score": 0.5}`,
		"нет оценки":         `{"predicted_risk_level": "Safe"}`,
		"null вместо оценки": `{"predicted_risk_level": "Safe", "risk_score": null}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second, testLogger())

			// Действие
			result := client.Predict(context.Background(), testFeatures())

			// Проверки: сырой ответ сохранён для диагностики
			assert.False(t, result.OK())
			assert.Equal(t, models.ErrInferenceUnavailable, result.Error)
			assert.Equal(t, body, result.Raw)
		})
	}
}

func TestClient_Predict_Timeout(t *testing.T) {
	// Подготовка: движок отвечает дольше таймаута клиента
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"predicted_risk_level": "Safe", "risk_score": 0.1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 50*time.Millisecond, testLogger())

	// Действие
	result := client.Predict(context.Background(), testFeatures())

	// Проверки
	assert.False(t, result.OK())
	assert.Equal(t, models.ErrInferenceUnavailable, result.Error)
	assert.NotEmpty(t, result.Raw)
}

func TestClient_Predict_EngineDown(t *testing.T) {
	// Подготовка: сервер закрыт до вызова
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	// Действие
	result := client.Predict(context.Background(), testFeatures())

	// Проверки
	assert.False(t, result.OK())
	assert.Equal(t, models.ErrInferenceUnavailable, result.Error)
}

func TestClient_Predict_ExtrasForwarded(t *testing.T) {
	// Подготовка: неизвестные поля набора признаков доходят до движка
	features := testFeatures()
	features.Extra = map[string]json.RawMessage{
		"salinity": json.RawMessage(`33.1`),
	}

	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"predicted_risk_level": "Safe", "risk_score": 0.1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())

	// Действие
	result := client.Predict(context.Background(), features)

	// Проверки
	assert.True(t, result.OK())
	assert.Equal(t, 33.1, received["salinity"])
}
