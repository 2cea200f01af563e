package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupUserRouter(e, authMiddleware)
	SetupItemRouter(e, authMiddleware)
	SetupFavoriteRouter(e, authMiddleware)
	SetupReviewRouter(e, authMiddleware)
	SetupRecommendationRouter(e, authMiddleware)
	SetupFileRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
