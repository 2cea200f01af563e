package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"trocly/internal/usecase"
	"trocly/pkg/response"
	"trocly/pkg/utils"
)

type ItemHandler struct {
	itemUseCase *usecase.ItemUseCase
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{
		itemUseCase: itemUseCase,
	}
}

type createItemRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required"`
	Keywords    []string `json:"keywords"`
	Price       float64  `json:"price" validate:"gte=0"`
	ImageURLs   []string `json:"image_urls" validate:"dive,url"`
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	item, err := h.itemUseCase.CreateItem(c.Request().Context(), userID, usecase.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Keywords:    req.Keywords,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

// GetItem serves one item. A signed-in viewer's visit counts towards the
// item's views and their own browsing history.
func (h *ItemHandler) GetItem(c echo.Context) error {
	viewerID, _ := c.Get("uid").(string)

	item, err := h.itemUseCase.GetItem(c.Request().Context(), c.Param("id"), viewerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) ListItems(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	filter := make(map[string]interface{})
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}
	if sellerID := c.QueryParam("seller_id"); sellerID != "" {
		filter["sellerId"] = sellerID
	}
	if soldStr := c.QueryParam("is_sold"); soldStr != "" {
		if sold, err := strconv.ParseBool(soldStr); err == nil {
			filter["isSold"] = sold
		}
	}
	if minStr := c.QueryParam("min_price"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			filter["minPrice"] = min
		}
	}
	if maxStr := c.QueryParam("max_price"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			filter["maxPrice"] = max
		}
	}

	items, total, err := h.itemUseCase.ListItems(c.Request().Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, params.Page, params.PageSize)
}

func (h *ItemHandler) ListMyItems(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	items, total, err := h.itemUseCase.ListSellerItems(c.Request().Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, params.Page, params.PageSize)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	item, err := h.itemUseCase.UpdateItem(c.Request().Context(), userID, c.Param("id"), usecase.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Keywords:    req.Keywords,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) MarkSold(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.itemUseCase.MarkItemSold(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "sold"})
}
