package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/config"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorker(cfg *config.Config) *Worker {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewWorker(nil, logger, cfg)
}

func testEvent() (AlertEvent, string) {
	event := AlertEvent{
		IncidentID: uuid.New(),
		OwnerID:    uuid.New(),
		RiskLevel:  models.RiskDangerous,
		RiskScore:  0.93,
		RegionName: "Mumbai",
		Timestamp:  time.Date(2025, 7, 14, 6, 30, 0, 0, time.UTC),
	}
	payload, _ := json.Marshal(event)
	return event, string(payload)
}

func TestWorker_Deliver_SignsPayload(t *testing.T) {
	// Подготовка
	var received atomic.Int32
	var gotSignature, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		gotSignature = r.Header.Get("X-Webhook-Signature")
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{
		WebhookURL:        server.URL,
		WebhookSecret:     "hook-secret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := testWorker(cfg)
	event, payload := testEvent()

	// Действие
	worker.deliver(context.Background(), event, payload)

	// Проверки: одна доставка, тело не искажено, подпись сходится
	assert.Equal(t, int32(1), received.Load())
	assert.Equal(t, payload, gotBody)

	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write([]byte(payload))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)

	var decoded AlertEvent
	require.NoError(t, json.Unmarshal([]byte(gotBody), &decoded))
	assert.Equal(t, event.IncidentID, decoded.IncidentID)
	assert.Equal(t, models.RiskDangerous, decoded.RiskLevel)
}

func TestWorker_Deliver_RetriesUntilSuccess(t *testing.T) {
	// Подготовка: первые две попытки падают, третья успешна
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{
		WebhookURL:        server.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := testWorker(cfg)
	event, payload := testEvent()

	// Действие
	worker.deliver(context.Background(), event, payload)

	// Проверки
	assert.Equal(t, int32(3), calls.Load())
}

func TestWorker_Deliver_GivesUpAfterMaxRetries(t *testing.T) {
	// Подготовка
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{
		WebhookURL:        server.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 2,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := testWorker(cfg)
	event, payload := testEvent()

	// Действие
	worker.deliver(context.Background(), event, payload)

	// Проверки
	assert.Equal(t, int32(2), calls.Load())
}

func TestWorker_Deliver_NoURLConfigured(t *testing.T) {
	// Подготовка: без WEBHOOK_URL доставка тихо пропускается
	cfg := &config.Config{
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := testWorker(cfg)
	event, payload := testEvent()

	// Действие и проверка: не паникует и не зависает
	worker.deliver(context.Background(), event, payload)
}

func TestWorker_Deliver_NoSecretNoSignature(t *testing.T) {
	// Подготовка
	var gotSignature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Webhook-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{
		WebhookURL:        server.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 1,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := testWorker(cfg)
	event, payload := testEvent()

	// Действие
	worker.deliver(context.Background(), event, payload)

	// Проверки
	assert.Empty(t, gotSignature)
}
