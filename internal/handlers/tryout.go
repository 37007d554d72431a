package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamscout/teamscout-api/internal/middleware"
	"github.com/teamscout/teamscout-api/pkg/dto"
)

type TryoutHandler struct {
	tryoutService TryoutServiceInterface
	teamService   TeamServiceInterface
}

func NewTryoutHandler(tryoutService TryoutServiceInterface, teamService TeamServiceInterface) *TryoutHandler {
	return &TryoutHandler{tryoutService: tryoutService, teamService: teamService}
}

// StartFromApplication opens a tryout chat for a pending application.
// Captains only.
func (h *TryoutHandler) StartFromApplication(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid application id")
		return
	}

	chat, err := h.tryoutService.StartFromApplication(context.Background(), applicationID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, chat)
}

// AcceptApproach is the approached player accepting. It opens the tryout
// chat from the approach.
func (h *TryoutHandler) AcceptApproach(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	approachID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid approach id")
		return
	}

	chat, err := h.tryoutService.StartFromApproach(context.Background(), approachID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, chat)
}

func (h *TryoutHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	chats, err := h.tryoutService.ListForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list chats")
		return
	}

	_ = c.JSON(200, chats)
}

// Get returns a tryout chat. Participants only; outsiders get the same 404
// as a chat that does not exist.
func (h *TryoutHandler) Get(c *drift.Context) {
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

	chat, err := h.tryoutService.GetByID(context.Background(), chatID)
	if err != nil {
		c.NotFound("chat not found")
		return
	}

	if chat.ApplicantID != userID {
		isMember, err := h.teamService.IsMember(context.Background(), chat.TeamID, userID)
		if err != nil || !isMember {
			c.NotFound("chat not found")
			return
		}
	}

	_ = c.JSON(200, chat)
}

func (h *TryoutHandler) End(c *drift.Context) {
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

	var req dto.EndTryoutRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	chat, msg, err := h.tryoutService.End(context.Background(), chatID, userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.TryoutTransitionResponse{Chat: chat, Message: msg})
}

func (h *TryoutHandler) SendOffer(c *drift.Context) {
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

	var req dto.SendOfferRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	chat, msg, err := h.tryoutService.SendOffer(context.Background(), chatID, userID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.TryoutTransitionResponse{Chat: chat, Message: msg})
}

func (h *TryoutHandler) AcceptOffer(c *drift.Context) {
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

	chat, msg, err := h.tryoutService.AcceptOffer(context.Background(), chatID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.TryoutTransitionResponse{Chat: chat, Message: msg})
}

func (h *TryoutHandler) RejectOffer(c *drift.Context) {
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

	var req dto.RejectOfferRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	chat, msg, err := h.tryoutService.RejectOffer(context.Background(), chatID, userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.TryoutTransitionResponse{Chat: chat, Message: msg})
}
