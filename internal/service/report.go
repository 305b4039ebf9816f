package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/binalert/internal/analysis"
	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=report.go -destination=mocks/report.go -package=mocks

// PointsPerReport начисляется гражданину за каждый отправленный отчет
const PointsPerReport = 50

// defaultWasteType используется, если ни ИИ, ни пользователь не указали тип отходов
const defaultWasteType = "Mixed"

// ReportRepository определяет контракт хранилища отчетов.
// ListReports возвращает отчеты от новых к старым; limit <= 0 означает все.
type ReportRepository interface {
	AddReport(ctx context.Context, report *models.WasteReport) error
	GetReport(ctx context.Context, id string) (*models.WasteReport, error)
	ListReports(ctx context.Context, limit int) ([]*models.WasteReport, error)
}

// ImageStore сохраняет фотографию отчета и возвращает ссылку на нее
type ImageStore interface {
	Save(ctx context.Context, reportID string, image string) (string, error)
}

// Analyzer - клиент анализа изображений
type Analyzer interface {
	Analyze(ctx context.Context, image string) analysis.Outcome
	Classify(ctx context.Context, image string) (*models.AnalysisResult, error)
}

// ReportService определяет контракт бизнес-логики отчетов
type ReportService interface {
	SubmitReport(ctx context.Context, input SubmitReportInput) (*SubmitReportResult, error)
	GetReport(ctx context.Context, id string) (*models.WasteReport, error)
	ListReports(ctx context.Context, limit int) ([]*models.WasteReport, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	PublicStats(ctx context.Context) (*PublicStats, error)
}

// SubmitReportInput - данные, собранные у гражданина
type SubmitReportInput struct {
	ReporterID        string
	Image             string
	Location          models.GeoLocation
	WasteTypeOverride string
}

// SubmitReportResult - сохраненный отчет и обновленный автор
type SubmitReportResult struct {
	Report         *models.WasteReport
	Reporter       *models.User
	PointsAwarded  int
	Degraded       bool
	DegradedReason string
}

type reportService struct {
	reports   ReportRepository
	users     UserRepository
	analyzer  Analyzer
	images    ImageStore
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewReportService(
	reports ReportRepository,
	users UserRepository,
	analyzer Analyzer,
	images ImageStore,
	publisher webhook.WebhookPublisher,
	logger *logrus.Logger,
) ReportService {
	return &reportService{
		reports:   reports,
		users:     users,
		analyzer:  analyzer,
		images:    images,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitReport анализирует фото, сохраняет отчет и начисляет баллы автору
func (s *reportService) SubmitReport(ctx context.Context, input SubmitReportInput) (*SubmitReportResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "report",
		"method":      "SubmitReport",
		"reporter_id": input.ReporterID,
	})
	log.Info("Attempting to submit a new report")

	if strings.TrimSpace(input.Image) == "" {
		return nil, analysis.ErrMissingImage
	}

	reporter, err := s.users.GetUser(ctx, input.ReporterID)
	if err != nil {
		log.WithError(err).Warn("Reporter lookup failed")
		return nil, fmt.Errorf("service: could not load reporter %s: %w", input.ReporterID, err)
	}

	// Анализ никогда не блокирует отправку: при сбое приходит fallback
	outcome := s.analyzer.Analyze(ctx, input.Image)
	if outcome.Degraded {
		log.WithField("reason", outcome.Reason).Warn("Submitting report with fallback analysis")
	}

	report := s.buildReport(reporter, input, outcome.Result)

	report.ImageURL, err = s.images.Save(ctx, report.ID, input.Image)
	if err != nil {
		log.WithError(err).Error("Failed to store report image")
		return nil, fmt.Errorf("service: could not store report image: %w", err)
	}

	if err := s.reports.AddReport(ctx, report); err != nil {
		log.WithError(err).Error("Failed to add report in repository")
		return nil, fmt.Errorf("service: could not add report: %w", err)
	}

	result := &SubmitReportResult{
		Report:         report,
		Reporter:       reporter,
		Degraded:       outcome.Degraded,
		DegradedReason: outcome.Reason,
	}

	if reporter.Role == models.RoleCitizen {
		// Отчет уже сохранен, ошибка начисления только логируется
		updated, err := s.users.AddPoints(ctx, reporter.ID, PointsPerReport)
		if err != nil {
			log.WithError(err).WithField("report_id", report.ID).Error("Failed to award points, report kept without points")
		} else {
			result.Reporter = updated
			result.PointsAwarded = PointsPerReport
		}
	}

	if report.Urgency.Severe() {
		s.publishDispatch(ctx, log, report)
	}

	log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"urgency":   report.Urgency,
		"degraded":  outcome.Degraded,
	}).Info("Report submitted successfully")
	return result, nil
}

func (s *reportService) buildReport(reporter *models.User, input SubmitReportInput, result models.AnalysisResult) *models.WasteReport {
	override := strings.TrimSpace(input.WasteTypeOverride)

	// Выбор пользователя важнее типов, найденных ИИ
	wasteTypes := result.WasteTypes
	if override != "" {
		wasteTypes = []string{override}
	}
	if len(wasteTypes) == 0 {
		wasteTypes = []string{defaultWasteType}
	}

	text := result.Description
	if text == "" {
		if override != "" {
			text = fmt.Sprintf("User reported: %s", override)
		} else {
			text = "No analysis details available."
		}
	}

	return &models.WasteReport{
		ID:             uuid.NewString(),
		Timestamp:      s.now().UnixMilli(),
		Location:       input.Location,
		Status:         models.StatusPending,
		Urgency:        result.Urgency,
		WasteType:      append([]string(nil), wasteTypes...),
		OverflowLevel:  result.OverflowLevel,
		AIAnalysisText: text,
		ReporterID:     reporter.ID,
	}
}

func (s *reportService) publishDispatch(ctx context.Context, log *logrus.Entry, report *models.WasteReport) {
	event := webhook.DispatchEvent{
		Kind:          webhook.KindReport,
		ReportID:      report.ID,
		ReporterID:    report.ReporterID,
		Urgency:       report.Urgency,
		WasteTypes:    report.WasteType,
		OverflowLevel: report.OverflowLevel,
		Latitude:      report.Location.Lat,
		Longitude:     report.Location.Lng,
		Timestamp:     time.UnixMilli(report.Timestamp).UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// отчет уже сохранен, диспетчеризация не должна его откатывать
		log.WithError(err).Error("Failed to publish dispatch event")
	}
}

// GetReport получает отчет по ID
func (s *reportService) GetReport(ctx context.Context, id string) (*models.WasteReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "GetReport",
		"report_id": id,
	})

	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.WithError(err).Error("Failed to get report from repository")
		}
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}
	return report, nil
}

// ListReports возвращает последние отчеты, новые первыми
func (s *reportService) ListReports(ctx context.Context, limit int) ([]*models.WasteReport, error) {
	if limit < 0 || limit > 500 {
		limit = 100
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "ListReports",
		"limit":   limit,
	})

	reports, err := s.reports.ListReports(ctx, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}

	log.WithField("count", len(reports)).Debug("Reports listed successfully")
	return reports, nil
}
