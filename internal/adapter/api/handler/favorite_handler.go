package handler

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/usecase"
	"trocly/pkg/response"
	"trocly/pkg/utils"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)

	favorite, err := h.favoriteUseCase.AddFavorite(c.Request().Context(), userID, c.Param("itemId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, favorite)
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.favoriteUseCase.RemoveFavorite(c.Request().Context(), userID, c.Param("itemId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "removed"})
}

func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	favorites, total, err := h.favoriteUseCase.ListFavorites(c.Request().Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, favorites, total, params.Page, params.PageSize)
}

func (h *FavoriteHandler) CountFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.favoriteUseCase.CountFavorites(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"count": count})
}

func (h *FavoriteHandler) CheckFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)

	isFavorite, err := h.favoriteUseCase.IsFavorite(c.Request().Context(), userID, c.Param("itemId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"is_favorite": isFavorite})
}
