package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

func SetupFileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	fileHandler := handler.GetFileHandler()

	fileGroup := e.Group("/v1/files")
	fileGroup.Use(authMiddleware.Authenticate)

	fileGroup.POST("/upload", fileHandler.UploadFile)
	fileGroup.DELETE("", fileHandler.DeleteFile)
}
