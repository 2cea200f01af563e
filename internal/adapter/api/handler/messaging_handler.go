package handler

import (
	"github.com/labstack/echo/v4"

	"trocly/internal/usecase"
	"trocly/pkg/response"
	"trocly/pkg/utils"
)

type MessagingHandler struct {
	messagingUseCase *usecase.MessagingUseCase
}

func NewMessagingHandler(messagingUseCase *usecase.MessagingUseCase) *MessagingHandler {
	return &MessagingHandler{
		messagingUseCase: messagingUseCase,
	}
}

type createThreadRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	ItemID      string `json:"item_id"`
}

type sendMessageRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	AudioURL string `json:"audio_url" validate:"omitempty,url"`
}

// CreateThread opens (or returns) the conversation with another user.
func (h *MessagingHandler) CreateThread(c echo.Context) error {
	var req createThreadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	thread, err := h.messagingUseCase.CreateOrGetThread(c.Request().Context(), userID, usecase.CreateThreadInput{
		RecipientID: req.RecipientID,
		ItemID:      req.ItemID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, thread)
}

// ListThreads returns the caller's visible conversations, newest first.
func (h *MessagingHandler) ListThreads(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	threads, total, err := h.messagingUseCase.ListThreadsForUser(c.Request().Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, threads, total, params.Page, params.PageSize)
}

// SendMessage appends a message to the thread's item conversation.
func (h *MessagingHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.messagingUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ThreadID: c.Param("id"),
		ItemID:   req.ItemID,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetMessages returns one item-conversation's messages.
func (h *MessagingHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	messages, total, err := h.messagingUseCase.GetThreadMessages(
		c.Request().Context(),
		userID,
		c.Param("id"),
		c.Param("itemId"),
		params.PageSize,
		params.Offset,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

func (h *MessagingHandler) MarkThreadSeen(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.MarkThreadSeen(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "seen"})
}

func (h *MessagingHandler) MarkItemRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.MarkItemRead(c.Request().Context(), userID, c.Param("id"), c.Param("itemId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}

func (h *MessagingHandler) MarkMessageRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.MarkMessageRead(c.Request().Context(), userID, c.Param("id"), c.Param("messageId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}

// DeleteThread hides the whole thread for the caller only.
func (h *MessagingHandler) DeleteThread(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.DeleteThread(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}

// DeleteItemConversation hides one item's conversation for the caller only.
func (h *MessagingHandler) DeleteItemConversation(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.DeleteItemConversation(c.Request().Context(), userID, c.Param("id"), c.Param("itemId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}

func (h *MessagingHandler) BlockThread(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.BlockThread(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "blocked"})
}

func (h *MessagingHandler) UnblockThread(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.UnblockThread(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "unblocked"})
}
