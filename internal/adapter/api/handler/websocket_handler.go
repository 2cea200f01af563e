package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"trocly/internal/infrastructure/firebase"
	ws "trocly/internal/infrastructure/websocket"
	"trocly/internal/usecase"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type WebSocketHandler struct {
	wsManager        *ws.Manager
	authClient       *firebase.FirebaseAuthClient
	messagingUseCase *usecase.MessagingUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authClient *firebase.FirebaseAuthClient, messagingUseCase *usecase.MessagingUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:        wsManager,
		authClient:       authClient,
		messagingUseCase: messagingUseCase,
	}
}

type clientEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
	ItemID   string `json:"item_id"`
}

// HandleWebSocket upgrades the connection after verifying the token passed
// as a query parameter, since browsers cannot set headers on upgrade
// requests.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	// Live subscriptions started by this connection end with it.
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		client.ReadPump(h.wsManager, func(uid string, payload []byte) {
			h.onClientEvent(ctx, client, payload)
		})
		cancel()
	}()
	go client.WritePump()

	return nil
}

func (h *WebSocketHandler) onClientEvent(ctx context.Context, client *ws.Client, payload []byte) {
	var event clientEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Warn("Ignoring malformed websocket event from %s: %v", client.UserID, err)
		return
	}

	switch event.Type {
	case "join_thread":
		h.wsManager.JoinThread(event.ThreadID, client.UserID)
	case "leave_thread":
		h.wsManager.LeaveThread(event.ThreadID, client.UserID)
	case "subscribe_threads":
		h.streamThreads(ctx, client)
	case "subscribe_messages":
		h.streamMessages(ctx, client, event.ThreadID, event.ItemID)
	}
}

// streamThreads pushes the user's visible thread list to the client on every
// store change.
func (h *WebSocketHandler) streamThreads(ctx context.Context, client *ws.Client) {
	updates, err := h.messagingUseCase.SubscribeThreads(ctx, client.UserID)
	if err != nil {
		logger.Error("Failed to subscribe %s to thread updates: %v", client.UserID, err)
		return
	}

	go func() {
		for threads := range updates {
			payload, err := json.Marshal(map[string]interface{}{
				"type":    "thread_list",
				"threads": threads,
			})
			if err != nil {
				continue
			}
			h.wsManager.SendToUser(client.UserID, payload)
		}
	}()
}

// streamMessages pushes one item-conversation's messages to the client on
// every store change.
func (h *WebSocketHandler) streamMessages(ctx context.Context, client *ws.Client, threadID, itemID string) {
	updates, err := h.messagingUseCase.SubscribeMessages(ctx, client.UserID, threadID, itemID)
	if err != nil {
		logger.Error("Failed to subscribe %s to messages of %s/%s: %v", client.UserID, threadID, itemID, err)
		return
	}

	go func() {
		for messages := range updates {
			payload, err := json.Marshal(map[string]interface{}{
				"type":      "message_list",
				"thread_id": threadID,
				"item_id":   itemID,
				"messages":  messages,
			})
			if err != nil {
				continue
			}
			h.wsManager.SendToUser(client.UserID, payload)
		}
	}()
}
