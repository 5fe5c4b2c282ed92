package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Публичные маршруты
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	api.GET("/alerts", h.listAlerts)
	api.POST("/predict", h.predict)
	api.POST("/ai-report", h.aiReport)

	// Маршруты, защищенные bearer-токеном
	incidents := api.Group("/incidents", JWTAuthMiddleware(h.tokens, h.logger))
	{
		incidents.POST("", h.createIncident)
		incidents.POST("/report", h.submitReport)
		incidents.GET("/my", h.myIncidents)
		incidents.GET("/analytics/my", h.myAnalytics)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
