package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Открытые маршруты
	api.POST("/auth/login", h.login)
	api.GET("/system/health", h.healthCheck)

	secured := api.Group("", AuthMiddleware(h.authService, h.logger))

	emergencies := secured.Group("/emergencies")
	{
		emergencies.POST("", h.createEmergency)
		emergencies.GET("/pending", h.listPending)
		emergencies.GET("/active", h.listActive)
		emergencies.GET("/fraud", h.listFraud)
		emergencies.GET("/mine/active", h.myActiveEmergency)
		emergencies.GET("/:id", h.getEmergency)
		emergencies.GET("/:id/history", h.getHistory)
		emergencies.POST("/:id/assign", h.assignResponder)
		emergencies.POST("/:id/accept", h.acceptAssignment)
		emergencies.POST("/:id/arrive", h.markArrived)
		emergencies.POST("/:id/resolve", h.resolveEmergency)
		emergencies.PUT("/:id/responder-location", h.updateResponderLocation)
		emergencies.POST("/:id/fraud", h.markFraud)
		emergencies.DELETE("/:id/fraud", h.unmarkFraud)
	}

	secured.GET("/history/summaries", h.listHistorySummaries)
	secured.PUT("/responders/me/status", h.setResponderStatus)

	// Realtime
	secured.GET("/ws", h.serveWS)
}
