package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamscout/teamscout-api/internal/hub"
	"github.com/teamscout/teamscout-api/internal/middleware"
	"github.com/teamscout/teamscout-api/pkg/dto"
)

type MessageHandler struct {
	messageService MessageServiceInterface
	hub            *hub.Hub
}

func NewMessageHandler(messageService MessageServiceInterface, h *hub.Hub) *MessageHandler {
	return &MessageHandler{messageService: messageService, hub: h}
}

func (h *MessageHandler) SendDirect(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SendDirectMessageRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.ReceiverID == uuid.Nil {
		c.BadRequest("receiver_id is required")
		return
	}

	msg, err := h.messageService.SendDirect(context.Background(), userID, req.ReceiverID, req.Body, req.ClientKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, msg)
}

func (h *MessageHandler) SendGroup(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.BadRequest("invalid chat id")
		return
	}

	var req dto.SendGroupMessageRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	msg, err := h.messageService.SendGroup(context.Background(), chatID, userID, req.Body, req.ClientKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, msg)
}

func (h *MessageHandler) ChatHistory(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.BadRequest("invalid chat id")
		return
	}

	messages, err := h.messageService.ChatHistory(context.Background(), chatID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, messages)
}

func (h *MessageHandler) DirectHistory(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	peerID, err := uuid.Parse(c.Param("peerId"))
	if err != nil {
		c.BadRequest("invalid peer id")
		return
	}

	messages, err := h.messageService.DirectHistory(context.Background(), userID, peerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, messages)
}

// Typing relays a best-effort typing indicator into the chat room. Nothing
// is stored; a dropped indicator is not an error.
func (h *MessageHandler) Typing(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.BadRequest("invalid chat id")
		return
	}

	h.hub.NotifyTyping(chatID, userID)

	_ = c.JSON(202, map[string]string{"status": "sent"})
}
