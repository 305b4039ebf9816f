package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRootRoutes регистрирует маршруты прокси анализа вне версии API
func (h *Handler) RegisterRootRoutes(router gin.IRouter) {
	router.GET("/", h.rootStatus)
	router.POST("/api/analyze", h.analyzeImage)
}

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты для отчетов о баках
	reports := api.Group("/reports")
	{
		reports.POST("", h.submitReport)
		reports.GET("", h.listReports)
		reports.GET("/:id", h.getReport)
	}

	// Статистика для панели муниципалитета и главной страницы
	api.GET("/dashboard/stats", h.dashboardStats)
	api.GET("/stats/public", h.publicStats)

	// Демонстрационные пользователи
	api.POST("/session", h.startSession)
	api.GET("/users/:id", h.getUser)
	api.GET("/leaderboard", h.leaderboard)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
