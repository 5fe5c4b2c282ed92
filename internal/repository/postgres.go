package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nereus-app/coastal_risk_system/internal/models"
	"github.com/nereus-app/coastal_risk_system/internal/service"
)

// pgUniqueViolation - код ошибки PostgreSQL о нарушении уникальности
const pgUniqueViolation = "23505"

// PostgresStore - долговечная реализация тех же контрактов хранилища поверх pgx.
// Оркестратор о замене не знает: выбор между memory и postgres делается в main.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore создает хранилище поверх пула соединений
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create сохраняет пользователя; уникальность email обеспечивает БД
func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4) RETURNING created_at;
	`
	err := s.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return service.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1;
	`
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Append добавляет инцидент. Структурированные части хранятся как JSONB.
func (s *PostgresStore) Append(ctx context.Context, incident *models.Incident) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.RecordedAt.IsZero() {
		incident.RecordedAt = time.Now()
	}
	if incident.ObservedAt.IsZero() {
		incident.ObservedAt = incident.RecordedAt
	}

	features, err := marshalNullable(incident.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}
	inference, err := marshalNullable(incident.Inference)
	if err != nil {
		return fmt.Errorf("failed to marshal inference: %w", err)
	}
	narrative, err := marshalNullable(incident.Narrative)
	if err != nil {
		return fmt.Errorf("failed to marshal narrative: %w", err)
	}

	query := `
		INSERT INTO incidents (
			id, owner_id, kind, type, description, location, lat, lng, photo,
			features, inference, narrative, region_name, observed_at, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = s.db.Exec(ctx, query,
		incident.ID,
		incident.OwnerID,
		incident.Kind,
		incident.Type,
		incident.Description,
		incident.Location,
		incident.Lat,
		incident.Lng,
		incident.Photo,
		features,
		inference,
		narrative,
		incident.RegionName,
		incident.ObservedAt,
		incident.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append incident: %w", err)
	}
	return nil
}

// ListByOwner возвращает инциденты пользователя, новые первыми
func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Incident, error) {
	query := `
		SELECT
			id, owner_id, kind, type, description, location, lat, lng, photo,
			features, inference, narrative, region_name, observed_at, recorded_at
		FROM incidents
		WHERE owner_id = $1
		ORDER BY recorded_at DESC;
	`
	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		var features, inference, narrative []byte
		err := rows.Scan(
			&incident.ID,
			&incident.OwnerID,
			&incident.Kind,
			&incident.Type,
			&incident.Description,
			&incident.Location,
			&incident.Lat,
			&incident.Lng,
			&incident.Photo,
			&features,
			&inference,
			&narrative,
			&incident.RegionName,
			&incident.ObservedAt,
			&incident.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		if err := unmarshalNullable(features, &incident.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
		if err := unmarshalNullable(inference, &incident.Inference); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inference: %w", err)
		}
		if err := unmarshalNullable(narrative, &incident.Narrative); err != nil {
			return nil, fmt.Errorf("failed to unmarshal narrative: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// List возвращает ленту оповещений, новые первыми
func (s *PostgresStore) List(ctx context.Context) ([]*models.Alert, error) {
	query := `
		SELECT id, title, description, location, severity, created_at
		FROM alerts
		ORDER BY created_at DESC;
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert := &models.Alert{}
		err := rows.Scan(
			&alert.ID,
			&alert.Title,
			&alert.Description,
			&alert.Location,
			&alert.Severity,
			&alert.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return alerts, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable[T any](data []byte, target **T) error {
	if len(data) == 0 {
		return nil
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	*target = out
	return nil
}

// Интерфейсные гарантии
var (
	_ service.UserRepository     = (*PostgresStore)(nil)
	_ service.IncidentRepository = (*PostgresStore)(nil)
	_ service.AlertRepository    = (*PostgresStore)(nil)
)
