package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamscout/teamscout-api/internal/middleware"
)

type ConversationHandler struct {
	conversationService ConversationServiceInterface
}

func NewConversationHandler(conversationService ConversationServiceInterface) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List returns the caller's conversation overview. When the database is
// unreachable a cached snapshot is served with the stale flag set.
func (h *ConversationHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	list, err := h.conversationService.ListConversations(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list conversations")
		return
	}

	_ = c.JSON(200, list)
}
