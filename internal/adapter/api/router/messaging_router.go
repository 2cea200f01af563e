package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

// SetupMessagingRouter sets up the conversation routes (excluding WebSocket)
func SetupMessagingRouter(e *echo.Echo, messagingHandler *handler.MessagingHandler, authMiddleware *middleware.AuthMiddleware) {
	threadGroup := e.Group("/v1/threads")
	threadGroup.Use(authMiddleware.Authenticate)

	// Thread management
	threadGroup.POST("", messagingHandler.CreateThread)
	threadGroup.GET("", messagingHandler.ListThreads)
	threadGroup.PUT("/:id/seen", messagingHandler.MarkThreadSeen)
	threadGroup.DELETE("/:id", messagingHandler.DeleteThread)
	threadGroup.PUT("/:id/block", messagingHandler.BlockThread)
	threadGroup.PUT("/:id/unblock", messagingHandler.UnblockThread)

	// Per-item conversations
	threadGroup.POST("/:id/messages", messagingHandler.SendMessage)
	threadGroup.GET("/:id/items/:itemId/messages", messagingHandler.GetMessages)
	threadGroup.PUT("/:id/items/:itemId/read", messagingHandler.MarkItemRead)
	threadGroup.DELETE("/:id/items/:itemId", messagingHandler.DeleteItemConversation)
	threadGroup.PUT("/:id/messages/:messageId/read", messagingHandler.MarkMessageRead)
}
