package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/binalert/internal/analysis"
	"github.com/shenikar/binalert/internal/config"
	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	reportService service.ReportService
	userService   service.UserService
	analyzer      service.Analyzer
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
}

func NewHandler(
	reportService service.ReportService,
	userService service.UserService,
	analyzer service.Analyzer,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		reportService: reportService,
		userService:   userService,
		analyzer:      analyzer,
		logger:        logger,
		validate:      validator.New(),
		cfg:           cfg,
	}
}

// bindJSON разбирает тело запроса; при ошибке сам пишет ответ и возвращает false
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.WithError(err).Warn("Request body too large")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// @Summary Service status
// @Description Liveness check of the analysis proxy
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router / [get]
func (h *Handler) rootStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Analyze a bin photo
// @Description Classify fill level, waste types and urgency of a waste bin image
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Image in base64 or data URI form"
// @Success 200 {object} models.AnalysisResult
// @Failure 400 {object} map[string]string "Missing image"
// @Failure 413 {object} map[string]string "Request body too large"
// @Failure 500 {object} map[string]string "Server misconfiguration or unexpected error"
// @Failure 501 {object} AnalyzeFallbackResponse "Classification unavailable, fallback embedded"
// @Router /api/analyze [post]
func (h *Handler) analyzeImage(c *gin.Context) {
	var input AnalyzeRequest
	log := h.logger.WithField("method", "analyzeImage")

	if !h.bindJSON(c, log, &input) {
		return
	}

	result, err := h.analyzer.Classify(c.Request.Context(), input.Image)
	if err != nil {
		h.writeAnalyzeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeAnalyzeError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, analysis.ErrMissingImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image"})
	case errors.Is(err, analysis.ErrMissingCredential):
		log.Error("Classification credential is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server missing GOOGLE_API_KEY"})
	case errors.Is(err, analysis.ErrEmptyResponse):
		log.WithError(err).Error("Classifier returned an empty response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Empty AI response"})
	case errors.Is(err, analysis.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Warn("Classifier unavailable, returning fallback")
		c.JSON(http.StatusNotImplemented, AnalyzeFallbackResponse{
			Error:    "Classification service unavailable. Returning fallback result.",
			Fallback: analysis.Fallback(),
		})
	default:
		log.WithError(err).Error("Unexpected analysis error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// @Summary Submit a waste report
// @Description Analyze the photo, store the report and credit the citizen
// @Tags Reports
// @Accept json
// @Produce json
// @Param report body SubmitReportRequest true "Report submission"
// @Success 201 {object} SubmitReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 404 {object} map[string]string "Reporter not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reports [post]
func (h *Handler) submitReport(c *gin.Context) {
	var input SubmitReportRequest
	log := h.logger.WithField("method", "submitReport")

	if !h.bindJSON(c, log, &input) {
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reportService.SubmitReport(c.Request.Context(), DTOToSubmitInput(input))
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrMissingImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image"})
		case errors.Is(err, models.ErrNotFound):
			log.WithError(err).Warn("Reporter not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "reporter not found"})
		default:
			log.WithError(err).Error("Failed to submit report in service")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, ResultToSubmitResponse(result))
}

// @Summary Get a list of reports
// @Description Get the latest reports, newest first
// @Tags Reports
// @Produce json
// @Param limit query int false "Maximum number of reports" default(100)
// @Success 200 {array} ReportResponse
// @Failure 400 {object} map[string]string "Invalid limit"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reports [get]
func (h *Handler) listReports(c *gin.Context) {
	log := h.logger.WithField("method", "listReports")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Get report by ID
// @Description Get a single report by its ID
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reports/{id} [get]
func (h *Handler) getReport(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getReport").WithField("id", id)

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		log.WithError(err).Error("Failed to get report from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Municipal dashboard statistics
// @Description Totals, urgency and waste type breakdown, reports per day for the last week
// @Tags Dashboard
// @Produce json
// @Success 200 {object} service.DashboardStats
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/dashboard/stats [get]
func (h *Handler) dashboardStats(c *gin.Context) {
	log := h.logger.WithField("method", "dashboardStats")

	stats, err := h.reportService.DashboardStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get dashboard stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Public statistics
// @Description Landing page counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} service.PublicStats
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/stats/public [get]
func (h *Handler) publicStats(c *gin.Context) {
	log := h.logger.WithField("method", "publicStats")

	stats, err := h.reportService.PublicStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get public stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Start a demo session
// @Description Pick the demo persona for a role. There is no authentication.
// @Tags Users
// @Accept json
// @Produce json
// @Param session body SessionRequest true "Role"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Invalid role"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/session [post]
func (h *Handler) startSession(c *gin.Context) {
	var input SessionRequest
	log := h.logger.WithField("method", "startSession")

	if !h.bindJSON(c, log, &input) {
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.StartSession(c.Request.Context(), models.UserRole(input.Role))
	if err != nil {
		log.WithError(err).Error("Failed to start session in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Get user by ID
// @Description Get a user profile with the current point balance
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getUser").WithField("id", id)

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.WithError(err).Error("Failed to get user from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Citizen leaderboard
// @Description Citizens ordered by points
// @Tags Users
// @Produce json
// @Param limit query int false "Maximum number of entries" default(10)
// @Success 200 {array} LeaderboardEntryResponse
// @Failure 400 {object} map[string]string "Invalid limit"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/leaderboard [get]
func (h *Handler) leaderboard(c *gin.Context) {
	log := h.logger.WithField("method", "leaderboard")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	entries, err := h.userService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to get leaderboard from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, EntriesToLeaderboardResponses(entries))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /api/v1/system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"storage":          h.cfg.StorageDriver,
		"analysis_enabled": strconv.FormatBool(h.cfg.GoogleAPIKey != ""),
	})
}
