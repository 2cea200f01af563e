package handler

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/usecase"
	"trocly/pkg/response"
)

type RecommendationHandler struct {
	recommendationUseCase *usecase.RecommendationUseCase
}

func NewRecommendationHandler(recommendationUseCase *usecase.RecommendationUseCase) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationUseCase: recommendationUseCase,
	}
}

// GetRecommendations returns items ranked against the caller's recent
// browsing. New users simply get an empty list.
func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	userID := c.Get("uid").(string)

	items, err := h.recommendationUseCase.GetRecommendations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, items)
}
