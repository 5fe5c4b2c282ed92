package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	alertQueueKey = "risk_alert_events"
)

// AlertEvent - данные вебхука об опасной оценке риска
type AlertEvent struct {
	IncidentID uuid.UUID        `json:"incident_id"`
	OwnerID    uuid.UUID        `json:"owner_id"`
	RiskLevel  models.RiskLevel `json:"risk_level"`
	RiskScore  float64          `json:"risk_score"`
	RegionName string           `json:"region_name,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// AlertPublisher - интерфейс для публикации событий об опасных оценках
type AlertPublisher interface {
	Publish(ctx context.Context, event AlertEvent) error
}

// RedisAlertPublisher - реализация AlertPublisher, использующая очередь Redis
type RedisAlertPublisher struct {
	redisClient *redis.Client
}

// NewRedisAlertPublisher создает новый RedisAlertPublisher
func NewRedisAlertPublisher(client *redis.Client) *RedisAlertPublisher {
	return &RedisAlertPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisAlertPublisher) Publish(ctx context.Context, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, alertQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert event to Redis: %w", err)
	}
	return nil
}

// NopAlertPublisher - заглушка на случай, когда Redis не настроен
type NopAlertPublisher struct{}

func (NopAlertPublisher) Publish(ctx context.Context, event AlertEvent) error {
	return nil
}
