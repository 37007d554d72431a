package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamscout/teamscout-api/internal/middleware"
	"github.com/teamscout/teamscout-api/pkg/dto"
)

type ApplicationHandler struct {
	applicationService ApplicationServiceInterface
	teamService        TeamServiceInterface
}

func NewApplicationHandler(applicationService ApplicationServiceInterface, teamService TeamServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		teamService:        teamService,
	}
}

func (h *ApplicationHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateApplicationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.TeamID == uuid.Nil {
		c.BadRequest("team_id is required")
		return
	}

	app, err := h.applicationService.Apply(context.Background(), req.TeamID, userID, req.Roles, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, app)
}

func (h *ApplicationHandler) ListMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	apps, err := h.applicationService.ListForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list applications")
		return
	}

	_ = c.JSON(200, apps)
}

// ListForTeam returns a team's applications. Members only.
func (h *ApplicationHandler) ListForTeam(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), teamID, userID)
	if err != nil || !isMember {
		c.NotFound("team not found")
		return
	}

	apps, err := h.applicationService.ListForTeam(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to list applications")
		return
	}

	_ = c.JSON(200, apps)
}

func (h *ApplicationHandler) Withdraw(c *drift.Context) {
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

	if err := h.applicationService.Withdraw(context.Background(), applicationID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"status": "withdrawn"})
}

func (h *ApplicationHandler) Reject(c *drift.Context) {
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

	var req dto.RejectApplicationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.applicationService.Reject(context.Background(), applicationID, userID, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"status": "rejected"})
}

func (h *ApplicationHandler) CreateApproach(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateApproachRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.TeamID == uuid.Nil || req.PlayerID == uuid.Nil {
		c.BadRequest("team_id and player_id are required")
		return
	}

	approach, err := h.applicationService.Approach(context.Background(), req.TeamID, userID, req.PlayerID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, approach)
}

func (h *ApplicationHandler) ListApproaches(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	approaches, err := h.applicationService.ListApproachesForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list approaches")
		return
	}

	_ = c.JSON(200, approaches)
}

func (h *ApplicationHandler) RejectApproach(c *drift.Context) {
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

	if err := h.applicationService.RejectApproach(context.Background(), approachID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"status": "rejected"})
}
