package analysis

import "errors"

var (
	// ErrMissingImage - в запросе нет изображения
	ErrMissingImage = errors.New("missing image")
	// ErrMissingCredential - сервер запущен без GOOGLE_API_KEY
	ErrMissingCredential = errors.New("missing classification credential")
	// ErrInvalidCredential - сервис классификации отклонил ключ
	ErrInvalidCredential = errors.New("invalid classification credential")
	// ErrEmptyResponse - сервис классификации вернул пустой ответ
	ErrEmptyResponse = errors.New("empty AI response")
	// ErrUnavailable - сетевая ошибка, ошибка сервиса или неразборчивый ответ
	ErrUnavailable = errors.New("classification service unavailable")
)
