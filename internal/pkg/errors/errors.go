package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда действие запрещено: окно теста закрыто,
	// дедлайн истек, попытка уже завершена или проверка владельца не прошла.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, проигрыш гонки на уникальном индексе (user_id, test_id)).
	ErrConflict = errors.New("resource state conflict")

	// ErrUpstreamTimeout используется, когда внешний сервис (judge, хранилище
	// тест-кейсов) не ответил за отведенный таймаут.
	ErrUpstreamTimeout = errors.New("upstream service timed out")

	// ErrUpstreamUnavailable используется при транспортных ошибках или не-2xx
	// ответах внешнего сервиса. Студент никогда не должен получить вердикт
	// "ответ неверный" из-за инфраструктурного сбоя.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
