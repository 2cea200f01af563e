package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	e.GET("/v1/users/:id", userHandler.GetProfile)

	protected := e.Group("/v1/profile")
	protected.Use(authMiddleware.Authenticate)
	protected.GET("", userHandler.GetMyProfile)
	protected.PUT("", userHandler.UpsertProfile)
}
