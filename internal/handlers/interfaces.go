package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/teamscout/teamscout-api/internal/models"
	"github.com/teamscout/teamscout-api/internal/services"
)

// TryoutServiceInterface defines the methods used by handlers from TryoutService
type TryoutServiceInterface interface {
	GetByID(ctx context.Context, chatID uuid.UUID) (*models.TryoutChat, error)
	StartFromApplication(ctx context.Context, applicationID, actorID uuid.UUID) (*models.TryoutChat, error)
	StartFromApproach(ctx context.Context, approachID, actorID uuid.UUID) (*models.TryoutChat, error)
	End(ctx context.Context, chatID, actorID uuid.UUID, reason string) (*models.TryoutChat, *models.Message, error)
	SendOffer(ctx context.Context, chatID, actorID uuid.UUID, offerMessage string) (*models.TryoutChat, *models.Message, error)
	AcceptOffer(ctx context.Context, chatID, actorID uuid.UUID) (*models.TryoutChat, *models.Message, error)
	RejectOffer(ctx context.Context, chatID, actorID uuid.UUID, reason string) (*models.TryoutChat, *models.Message, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TryoutChat, error)
}

// MessageServiceInterface defines the methods used by handlers from MessageService
type MessageServiceInterface interface {
	SendDirect(ctx context.Context, senderID, receiverID uuid.UUID, body string, clientKey *uuid.UUID) (*models.Message, error)
	SendGroup(ctx context.Context, chatID, senderID uuid.UUID, body string, clientKey *uuid.UUID) (*models.Message, error)
	SendSystemDirect(ctx context.Context, receiverID uuid.UUID, body, msgType string, metadata json.RawMessage) (*models.Message, error)
	ChatHistory(ctx context.Context, chatID, userID uuid.UUID) ([]models.Message, error)
	DirectHistory(ctx context.Context, userID, peerID uuid.UUID) ([]models.Message, error)
}

// ApplicationServiceInterface defines the methods used by handlers from ApplicationService
type ApplicationServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TeamApplication, error)
	Apply(ctx context.Context, teamID, applicantID uuid.UUID, roles []string, message string) (*models.TeamApplication, error)
	Withdraw(ctx context.Context, applicationID, actorID uuid.UUID) error
	Reject(ctx context.Context, applicationID, actorID uuid.UUID, reason string) error
	ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamApplication, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TeamApplication, error)
	Approach(ctx context.Context, teamID, actorID, playerID uuid.UUID, message string) (*models.RecruitmentApproach, error)
	RejectApproach(ctx context.Context, approachID, actorID uuid.UUID) error
	ListApproachesForUser(ctx context.Context, userID uuid.UUID) ([]models.RecruitmentApproach, error)
}

// ConversationServiceInterface defines the methods used by handlers from ConversationService
type ConversationServiceInterface interface {
	ListConversations(ctx context.Context, userID uuid.UUID) (*services.ConversationList, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	IsCaptain(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
}
