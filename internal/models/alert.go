package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert - публичное оповещение в ленте, доступной без авторизации
type Alert struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Severity    string    `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
}
