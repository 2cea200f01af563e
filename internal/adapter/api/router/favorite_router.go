package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

func SetupFavoriteRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	favoriteHandler := handler.GetFavoriteHandler()

	favoriteGroup := e.Group("/v1/favorites")
	favoriteGroup.Use(authMiddleware.Authenticate)

	favoriteGroup.GET("", favoriteHandler.ListFavorites)
	favoriteGroup.GET("/count", favoriteHandler.CountFavorites)
	favoriteGroup.POST("/:itemId", favoriteHandler.AddFavorite)
	favoriteGroup.DELETE("/:itemId", favoriteHandler.RemoveFavorite)
	favoriteGroup.GET("/:itemId", favoriteHandler.CheckFavorite)
}
