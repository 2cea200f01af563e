package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

func SetupRecommendationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	recommendationHandler := handler.GetRecommendationHandler()

	group := e.Group("/v1/recommendations")
	group.Use(authMiddleware.Authenticate)
	group.GET("", recommendationHandler.GetRecommendations)
}
