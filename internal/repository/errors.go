package repository

import "errors"

// Ошибки хранилища, которые сервисы переводят в доменные
var (
	// ErrOverlap новый слот пересекается с существующим слотом тренера
	ErrOverlap = errors.New("slot overlaps existing slot")
	// ErrConditionFailed условная запись не нашла строку в ожидаемом состоянии
	ErrConditionFailed = errors.New("conditional update matched no rows")
	// ErrClientHasActiveBooking у клиента уже есть забронированный слот
	ErrClientHasActiveBooking = errors.New("client already holds an active booking")
)
