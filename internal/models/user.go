package models

import (
	"time"

	"github.com/google/uuid"
)

// User - зарегистрированный аккаунт. Пароль хранится только как bcrypt-хэш.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
