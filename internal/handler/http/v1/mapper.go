package v1

import (
	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/internal/service"
)

// DTOToSubmitInput преобразует DTO отправки отчета во входные данные сервиса
func DTOToSubmitInput(dto SubmitReportRequest) service.SubmitReportInput {
	return service.SubmitReportInput{
		ReporterID:        dto.ReporterID,
		Image:             dto.Image,
		Location:          models.GeoLocation{Lat: *dto.Location.Lat, Lng: *dto.Location.Lng},
		WasteTypeOverride: dto.WasteTypeOverride,
	}
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.WasteReport) *ReportResponse {
	return &ReportResponse{
		ID:             model.ID,
		ImageURL:       model.ImageURL,
		Timestamp:      model.Timestamp,
		Location:       model.Location,
		Status:         string(model.Status),
		Urgency:        string(model.Urgency),
		WasteType:      model.WasteType,
		OverflowLevel:  model.OverflowLevel,
		AIAnalysisText: model.AIAnalysisText,
		ReporterID:     model.ReporterID,
	}
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(models []*models.WasteReport) []*ReportResponse {
	responses := make([]*ReportResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToReportResponse(model)
	}
	return responses
}

// ModelToUserResponse преобразует пользователя в DTO для ответа
func ModelToUserResponse(model *models.User) *UserResponse {
	return &UserResponse{
		ID:     model.ID,
		Name:   model.Name,
		Role:   string(model.Role),
		Points: model.Points,
		Avatar: model.Avatar,
	}
}

// ResultToSubmitResponse преобразует результат отправки в DTO для ответа
func ResultToSubmitResponse(result *service.SubmitReportResult) *SubmitReportResponse {
	return &SubmitReportResponse{
		Report:         ModelToReportResponse(result.Report),
		Reporter:       ModelToUserResponse(result.Reporter),
		PointsAwarded:  result.PointsAwarded,
		Degraded:       result.Degraded,
		DegradedReason: result.DegradedReason,
	}
}

// EntriesToLeaderboardResponses преобразует таблицу лидеров в DTO
func EntriesToLeaderboardResponses(entries []service.LeaderboardEntry) []*LeaderboardEntryResponse {
	responses := make([]*LeaderboardEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = &LeaderboardEntryResponse{
			Rank:   e.Rank,
			ID:     e.User.ID,
			Name:   e.User.Name,
			Avatar: e.User.Avatar,
			Points: e.Points,
		}
	}
	return responses
}
