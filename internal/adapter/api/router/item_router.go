package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

func SetupItemRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	itemHandler := handler.GetItemHandler()

	// Browsing is public; a valid token enriches it with view tracking.
	public := e.Group("/v1/items")
	public.Use(authMiddleware.OptionalAuthenticate)
	public.GET("", itemHandler.ListItems)
	public.GET("/:id", itemHandler.GetItem)

	protected := e.Group("/v1/items")
	protected.Use(authMiddleware.Authenticate)
	protected.POST("", itemHandler.CreateItem)
	protected.PUT("/:id", itemHandler.UpdateItem)
	protected.PUT("/:id/sold", itemHandler.MarkSold)

	my := e.Group("/v1/my-items")
	my.Use(authMiddleware.Authenticate)
	my.GET("", itemHandler.ListMyItems)
}
