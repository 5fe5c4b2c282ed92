package service

import "errors"

// Ошибки уровня сервиса, которые хэндлеры отображают в HTTP-статусы.
// Сбои внешних коллабораторов (инференс, генерация отчёта) сюда не входят:
// они возвращаются как данные внутри успешного ответа.
var (
	// ErrInvalidInput - данные клиента не прошли проверку формы или обязательных полей
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken - попытка регистрации с уже занятым email
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials - неверная пара email/пароль
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound - пользователь не найден в хранилище
	ErrUserNotFound = errors.New("user not found")
	// ErrEnrichmentUnavailable - сервис генерации отчётов не настроен или недоступен
	ErrEnrichmentUnavailable = errors.New("enrichment unavailable")
)
