package router

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/adapter/api/handler"
	"trocly/internal/adapter/api/middleware"
)

func SetupReviewRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	e.GET("/v1/sellers/:sellerId/reviews", reviewHandler.ListSellerReviews)

	protected := e.Group("/v1/reviews")
	protected.Use(authMiddleware.Authenticate)
	protected.POST("", reviewHandler.SubmitReview)
}
