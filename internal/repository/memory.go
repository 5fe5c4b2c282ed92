package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/nereus-app/coastal_risk_system/internal/service"
)

// MemoryStore - потокобезопасное in-memory хранилище процесса.
// Инциденты append-only: операции изменения и удаления отсутствуют.
// Запись кладётся в срез уже полностью собранной под мьютексом, поэтому
// читатели никогда не видят частично сконструированную запись.
type MemoryStore struct {
	mu        sync.RWMutex
	usersByID map[uuid.UUID]*models.User
	userIDs   map[string]uuid.UUID // email -> id
	incidents []*models.Incident
	alerts    []*models.Alert
}

// NewMemoryStore создает пустое хранилище с демонстрационной лентой оповещений
func NewMemoryStore() *MemoryStore {
	now := time.Now()
	return &MemoryStore{
		usersByID: make(map[uuid.UUID]*models.User),
		userIDs:   make(map[string]uuid.UUID),
		incidents: make([]*models.Incident, 0),
		alerts: []*models.Alert{
			{
				ID:          uuid.New(),
				Title:       "High Tide Advisory",
				Description: "Tide expected +0.9m above MSL near Marine Drive.",
				Location:    "Mumbai, IN",
				Severity:    "Moderate",
				Timestamp:   now.Add(-30 * time.Minute),
			},
			{
				ID:          uuid.New(),
				Title:       "Storm Surge Risk",
				Description: "IMD bulletin indicates possible surge in next 12h.",
				Location:    "Kolkata, IN",
				Severity:    "High",
				Timestamp:   now.Add(-90 * time.Minute),
			},
			{
				ID:          uuid.New(),
				Title:       "Algal Bloom Watch",
				Description: "Chlorophyll-a spike detected in satellite pass.",
				Location:    "Panaji, IN",
				Severity:    "Low",
				Timestamp:   now.Add(-180 * time.Minute),
			},
		},
	}
}

// Create сохраняет пользователя, следя за уникальностью email
func (s *MemoryStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.userIDs[user.Email]; exists {
		return service.ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	stored := *user
	s.usersByID[stored.ID] = &stored
	s.userIDs[stored.Email] = stored.ID
	return nil
}

// GetByEmail возвращает пользователя по email
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userIDs[email]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	user := *s.usersByID[id]
	return &user, nil
}

// Append добавляет инцидент, присваивая ID и RecordedAt, если они не заданы
func (s *MemoryStore) Append(ctx context.Context, incident *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.RecordedAt.IsZero() {
		incident.RecordedAt = time.Now()
	}
	if incident.ObservedAt.IsZero() {
		incident.ObservedAt = incident.RecordedAt
	}

	s.incidents = append(s.incidents, incident)
	return nil
}

// ListByOwner возвращает инциденты пользователя, новые первыми.
// Наружу отдаются копии записей: мутация результата не затрагивает хранилище.
func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Incident, 0)
	for _, incident := range s.incidents {
		if incident.OwnerID == ownerID {
			stored := *incident
			out = append(out, &stored)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	return out, nil
}

// List возвращает ленту оповещений, новые первыми
func (s *MemoryStore) List(ctx context.Context) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Alert, len(s.alerts))
	copy(out, s.alerts)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Интерфейсные гарантии
var (
	_ service.UserRepository     = (*MemoryStore)(nil)
	_ service.IncidentRepository = (*MemoryStore)(nil)
	_ service.AlertRepository    = (*MemoryStore)(nil)
)
