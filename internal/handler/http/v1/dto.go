package v1

import "github.com/shenikar/binalert/internal/models"

// AnalyzeRequest DTO для анализа изображения
// @Description Изображение в base64 или data URI
type AnalyzeRequest struct {
	Image string `json:"image"`
}

// AnalyzeFallbackResponse DTO ответа, когда сервис классификации недоступен
// @Description Ошибка и безопасный результат по умолчанию
type AnalyzeFallbackResponse struct {
	Error    string                `json:"error"`
	Fallback models.AnalysisResult `json:"fallback"`
}

// LocationDTO DTO координат
// @Description Координаты бака
type LocationDTO struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// SubmitReportRequest DTO для отправки отчета
// @Description DTO для отправки отчета о переполненном баке
type SubmitReportRequest struct {
	ReporterID        string      `json:"reporterId" validate:"required,max=64"`
	Image             string      `json:"image" validate:"required"`
	Location          LocationDTO `json:"location"`
	WasteTypeOverride string      `json:"wasteTypeOverride,omitempty" validate:"omitempty,max=64"`
}

// ReportResponse DTO для ответа с информацией об отчете
// @Description DTO для ответа с информацией об отчете
type ReportResponse struct {
	ID             string             `json:"id"`
	ImageURL       string             `json:"imageUrl"`
	Timestamp      int64              `json:"timestamp"`
	Location       models.GeoLocation `json:"location"`
	Status         string             `json:"status"`
	Urgency        string             `json:"urgency"`
	WasteType      []string           `json:"wasteType"`
	OverflowLevel  int                `json:"overflowLevel"`
	AIAnalysisText string             `json:"aiAnalysisText"`
	ReporterID     string             `json:"reporterId"`
}

// UserResponse DTO для ответа с информацией о пользователе
// @Description DTO для ответа с информацией о пользователе
type UserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Points int    `json:"points"`
	Avatar string `json:"avatar"`
}

// SubmitReportResponse DTO ответа на отправку отчета
// @Description Сохраненный отчет и обновленный баланс автора
type SubmitReportResponse struct {
	Report         *ReportResponse `json:"report"`
	Reporter       *UserResponse   `json:"reporter"`
	PointsAwarded  int             `json:"pointsAwarded"`
	Degraded       bool            `json:"degraded"`
	DegradedReason string          `json:"degradedReason,omitempty"`
}

// SessionRequest DTO для демонстрационного входа
// @Description Выбор роли демонстрационной персоны
type SessionRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=CITIZEN EMPLOYEE EMPLOYER"`
}

// LeaderboardEntryResponse DTO строки таблицы лидеров
// @Description DTO строки таблицы лидеров
type LeaderboardEntryResponse struct {
	Rank   int    `json:"rank"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Points int    `json:"points"`
}
