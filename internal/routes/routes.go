package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyzone_backend/internal/handlers"
	"studyzone_backend/internal/logger"
)

// RegisterRoutes mounts the API under /api/v1 plus the operational endpoints.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guards handlers.RouteGuards,
	metricsHandler http.Handler,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)
	if metricsHandler != nil {
		ginRouter.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, guards)
		appHandlers.UserHandler.RegisterRoutes(api, guards)
	}

	logger.Debug("routes registered", "count", len(ginRouter.Routes()))
}
