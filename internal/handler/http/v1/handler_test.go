package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/binalert/internal/analysis"
	"github.com/shenikar/binalert/internal/config"
	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/internal/service"
	"github.com/shenikar/binalert/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerMocks struct {
	reports  *mocks.MockReportService
	users    *mocks.MockUserService
	analyzer *mocks.MockAnalyzer
}

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*Handler, handlerMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := handlerMocks{
		reports:  mocks.NewMockReportService(ctrl),
		users:    mocks.NewMockUserService(ctrl),
		analyzer: mocks.NewMockAnalyzer(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		StorageDriver: config.StorageMemory,
		MaxBodyBytes:  1024,
	}

	handler := NewHandler(m.reports, m.users, m.analyzer, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))
	handler.RegisterRootRoutes(router)
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, m, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestRootStatus(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeImage_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	result := &models.AnalysisResult{
		OverflowLevel: 95,
		WasteTypes:    []string{"organic"},
		Urgency:       models.UrgencyHigh,
		Description:   "Overflowing.",
	}

	m.analyzer.EXPECT().Classify(gomock.Any(), "data:image/png;base64,AAAA").Return(result, nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/analyze", jsonBody(t, AnalyzeRequest{Image: "data:image/png;base64,AAAA"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"overflowLevel":95,"wasteTypes":["organic"],"urgency":"HIGH","description":"Overflowing.","isHazardous":false}`,
		w.Body.String())
}

func TestAnalyzeImage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "missing image", err: analysis.ErrMissingImage, wantStatus: http.StatusBadRequest, wantBody: "Missing image"},
		{name: "missing credential", err: analysis.ErrMissingCredential, wantStatus: http.StatusInternalServerError, wantBody: "Server missing GOOGLE_API_KEY"},
		{name: "empty response", err: analysis.ErrEmptyResponse, wantStatus: http.StatusInternalServerError, wantBody: "Empty AI response"},
		{name: "unavailable", err: fmt.Errorf("%w: status 503", analysis.ErrUnavailable), wantStatus: http.StatusNotImplemented, wantBody: "fallback"},
		{name: "timeout", err: context.DeadlineExceeded, wantStatus: http.StatusNotImplemented, wantBody: "fallback"},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			m.analyzer.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(nil, tt.err).Times(1)

			w := makeRequest(router, http.MethodPost, "/api/analyze", jsonBody(t, AnalyzeRequest{Image: "AAAA"}))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestAnalyzeImage_FallbackBody(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.analyzer.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(nil, analysis.ErrUnavailable)

	w := makeRequest(router, http.MethodPost, "/api/analyze", jsonBody(t, AnalyzeRequest{Image: "AAAA"}))
	require.Equal(t, http.StatusNotImplemented, w.Code)

	var resp AnalyzeFallbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, analysis.Fallback(), resp.Fallback)
}

func TestAnalyzeImage_InvalidJSON(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.analyzer.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(0) // Анализатор не должен вызываться

	w := makeRequest(router, http.MethodPost, "/api/analyze", bytes.NewBufferString(`{"image": `))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestAnalyzeImage_BodyTooLarge(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.analyzer.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/analyze", jsonBody(t, AnalyzeRequest{Image: strings.Repeat("A", 4096)}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func validSubmitRequest() map[string]any {
	return map[string]any{
		"reporterId": "user-123",
		"image":      "data:image/jpeg;base64,AAAA",
		"location":   map[string]any{"lat": 34.05, "lng": -118.25},
	}
}

func TestSubmitReport_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	body := validSubmitRequest()
	body["wasteTypeOverride"] = "Glass"

	m.reports.EXPECT().
		SubmitReport(gomock.Any(), service.SubmitReportInput{
			ReporterID:        "user-123",
			Image:             "data:image/jpeg;base64,AAAA",
			Location:          models.GeoLocation{Lat: 34.05, Lng: -118.25},
			WasteTypeOverride: "Glass",
		}).
		Return(&service.SubmitReportResult{
			Report: &models.WasteReport{
				ID:        "r1",
				Status:    models.StatusPending,
				Urgency:   models.UrgencyMedium,
				WasteType: []string{"Glass"},
			},
			Reporter:      &models.User{ID: "user-123", Role: models.RoleCitizen, Points: 1300},
			PointsAwarded: 50,
			Degraded:      true,
		}, nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/reports", jsonBody(t, body))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp SubmitReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "r1", resp.Report.ID)
	assert.Equal(t, []string{"Glass"}, resp.Report.WasteType)
	assert.Equal(t, 1300, resp.Reporter.Points)
	assert.Equal(t, 50, resp.PointsAwarded)
	assert.True(t, resp.Degraded)
}

func TestSubmitReport_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{name: "no reporter", mutate: func(b map[string]any) { delete(b, "reporterId") }, field: "ReporterID"},
		{name: "no image", mutate: func(b map[string]any) { delete(b, "image") }, field: "Image"},
		{name: "no location", mutate: func(b map[string]any) { delete(b, "location") }, field: "Lat"},
		{name: "bad latitude", mutate: func(b map[string]any) { b["location"] = map[string]any{"lat": 123.0, "lng": 1.0} }, field: "Lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			m.reports.EXPECT().SubmitReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

			body := validSubmitRequest()
			tt.mutate(body)
			w := makeRequest(router, http.MethodPost, "/api/v1/reports", jsonBody(t, body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf("'%s'", tt.field))
		})
	}
}

func TestSubmitReport_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "reporter not found", err: fmt.Errorf("service: %w", models.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "internal", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			m.reports.EXPECT().SubmitReport(gomock.Any(), gomock.Any()).Return(nil, tt.err).Times(1)

			w := makeRequest(router, http.MethodPost, "/api/v1/reports", jsonBody(t, validSubmitRequest()))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListReports(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.reports.EXPECT().ListReports(gomock.Any(), 5).Return([]*models.WasteReport{
		{ID: "new", WasteType: []string{"Paper"}},
		{ID: "old", WasteType: []string{"Metal"}},
	}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/reports?limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "new", resp[0].ID)
}

func TestListReports_InvalidLimit(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.reports.EXPECT().ListReports(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/reports?limit=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReport(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		_, m, router := newTestHandler(t)
		m.reports.EXPECT().GetReport(gomock.Any(), "r1").Return(&models.WasteReport{ID: "r1"}, nil)

		w := makeRequest(router, http.MethodGet, "/api/v1/reports/r1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"r1"`)
	})

	t.Run("not found", func(t *testing.T) {
		_, m, router := newTestHandler(t)
		m.reports.EXPECT().GetReport(gomock.Any(), "nope").Return(nil, fmt.Errorf("service: %w", models.ErrNotFound))

		w := makeRequest(router, http.MethodGet, "/api/v1/reports/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		_, m, router := newTestHandler(t)
		m.reports.EXPECT().GetReport(gomock.Any(), "r1").Return(nil, errors.New("db down"))

		w := makeRequest(router, http.MethodGet, "/api/v1/reports/r1", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDashboardStats(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.reports.EXPECT().DashboardStats(gomock.Any()).Return(&service.DashboardStats{TotalReports: 3, CriticalReports: 1}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/dashboard/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalReports":3`)
	assert.Contains(t, w.Body.String(), `"criticalReports":1`)
}

func TestPublicStats(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.reports.EXPECT().PublicStats(gomock.Any()).Return(nil, errors.New("db down"))

	w := makeRequest(router, http.MethodGet, "/api/v1/stats/public", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStartSession(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().StartSession(gomock.Any(), models.RoleEmployer).Return(service.DemoEmployer(), nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/session", jsonBody(t, SessionRequest{Role: "EMPLOYER"}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin-001", resp.ID)
	assert.Equal(t, "EMPLOYER", resp.Role)
}

func TestStartSession_InvalidRole(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().StartSession(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/session", jsonBody(t, SessionRequest{Role: "ADMIN"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "oneof")
}

func TestGetUser_NotFound(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, fmt.Errorf("service: %w", models.ErrNotFound))

	w := makeRequest(router, http.MethodGet, "/api/v1/users/ghost", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaderboard(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().Leaderboard(gomock.Any(), 10).Return([]service.LeaderboardEntry{
		{Rank: 1, User: &models.User{ID: "user-123", Name: "Alex Rivera"}, Points: 1250},
	}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/leaderboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []LeaderboardEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, LeaderboardEntryResponse{Rank: 1, ID: "user-123", Name: "Alex Rivera", Points: 1250}, resp[0])
}

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory","analysis_enabled":"false"}`, w.Body.String())
}
