package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamscout/teamscout-api/internal/hub"
	"github.com/teamscout/teamscout-api/internal/middleware"
)

type RealtimeHandler struct {
	hub           *hub.Hub
	tryoutService TryoutServiceInterface
	teamService   TeamServiceInterface
}

func NewRealtimeHandler(h *hub.Hub, tryoutService TryoutServiceInterface, teamService TeamServiceInterface) *RealtimeHandler {
	return &RealtimeHandler{
		hub:           h,
		tryoutService: tryoutService,
		teamService:   teamService,
	}
}

// Connect opens the event stream for the caller. Direct messages and user
// addressed events flow immediately; chat rooms are joined per chat after
// connecting.
func (h *RealtimeHandler) Connect(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &hub.Client{
		ID:     clientID,
		UserID: userID,
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *RealtimeHandler) JoinChat(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.BadRequest("invalid chat id")
		return
	}

	ctx := context.Background()

	canAccess, err := h.canAccessChat(ctx, chatID, userID)
	if err != nil || !canAccess {
		c.NotFound("chat not found")
		return
	}

	h.hub.JoinChat(clientID, chatID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("joined chat %s", chatID),
	})
}

func (h *RealtimeHandler) LeaveChat(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.BadRequest("invalid chat id")
		return
	}

	h.hub.LeaveChat(clientID, chatID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("left chat %s", chatID),
	})
}

func (h *RealtimeHandler) canAccessChat(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	chat, err := h.tryoutService.GetByID(ctx, chatID)
	if err != nil {
		return false, err
	}
	if chat.ApplicantID == userID {
		return true, nil
	}
	return h.teamService.IsMember(ctx, chat.TeamID, userID)
}
