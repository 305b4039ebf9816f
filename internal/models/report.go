package models

import (
	"errors"
	"strings"
)

// ErrNotFound возвращается хранилищем, если запись не найдена
var ErrNotFound = errors.New("not found")

// ReportStatus - этап жизненного цикла отчета
type ReportStatus string

const (
	StatusPending  ReportStatus = "PENDING"
	StatusAssigned ReportStatus = "ASSIGNED"
	StatusResolved ReportStatus = "RESOLVED"
)

// Valid сообщает, входит ли статус в допустимый набор
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusResolved:
		return true
	}
	return false
}

// Urgency - срочность вывоза, определяющая приоритет диспетчеризации
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL" // пожар, дым, утечка химикатов
)

// Urgencies перечисляет уровни срочности по возрастанию
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

// Valid сообщает, входит ли уровень в допустимый набор
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Severe возвращает true для HIGH и CRITICAL
func (u Urgency) Severe() bool {
	return u == UrgencyHigh || u == UrgencyCritical
}

// ParseUrgency приводит произвольную строку к уровню срочности.
// Сравнение точное, срезаются только пробелы. Все, что не распознано, становится LOW.
func ParseUrgency(raw string) Urgency {
	u := Urgency(strings.TrimSpace(raw))
	if u.Valid() {
		return u
	}
	return UrgencyLow
}

// GeoLocation - координаты в градусах
type GeoLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// WasteReport - отчет гражданина о переполненном баке.
// После создания не изменяется.
type WasteReport struct {
	ID             string       `json:"id"`
	ImageURL       string       `json:"imageUrl"`
	Timestamp      int64        `json:"timestamp"` // миллисекунды с начала эпохи
	Location       GeoLocation  `json:"location"`
	Status         ReportStatus `json:"status"`
	Urgency        Urgency      `json:"urgency"`
	WasteType      []string     `json:"wasteType"`
	OverflowLevel  int          `json:"overflowLevel"`
	AIAnalysisText string       `json:"aiAnalysisText"`
	ReporterID     string       `json:"reporterId"`
}
