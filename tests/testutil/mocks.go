package testutil

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/teamscout/teamscout-api/internal/models"
	"github.com/teamscout/teamscout-api/internal/services"
)

// MockTryoutService mocks the TryoutService
type MockTryoutService struct {
	mock.Mock
}

func (m *MockTryoutService) GetByID(ctx context.Context, chatID uuid.UUID) (*models.TryoutChat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TryoutChat), args.Error(1)
}

func (m *MockTryoutService) StartFromApplication(ctx context.Context, applicationID, actorID uuid.UUID) (*models.TryoutChat, error) {
	args := m.Called(ctx, applicationID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TryoutChat), args.Error(1)
}

func (m *MockTryoutService) StartFromApproach(ctx context.Context, approachID, actorID uuid.UUID) (*models.TryoutChat, error) {
	args := m.Called(ctx, approachID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TryoutChat), args.Error(1)
}

func (m *MockTryoutService) End(ctx context.Context, chatID, actorID uuid.UUID, reason string) (*models.TryoutChat, *models.Message, error) {
	args := m.Called(ctx, chatID, actorID, reason)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.TryoutChat), args.Get(1).(*models.Message), args.Error(2)
}

func (m *MockTryoutService) SendOffer(ctx context.Context, chatID, actorID uuid.UUID, offerMessage string) (*models.TryoutChat, *models.Message, error) {
	args := m.Called(ctx, chatID, actorID, offerMessage)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.TryoutChat), args.Get(1).(*models.Message), args.Error(2)
}

func (m *MockTryoutService) AcceptOffer(ctx context.Context, chatID, actorID uuid.UUID) (*models.TryoutChat, *models.Message, error) {
	args := m.Called(ctx, chatID, actorID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.TryoutChat), args.Get(1).(*models.Message), args.Error(2)
}

func (m *MockTryoutService) RejectOffer(ctx context.Context, chatID, actorID uuid.UUID, reason string) (*models.TryoutChat, *models.Message, error) {
	args := m.Called(ctx, chatID, actorID, reason)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.TryoutChat), args.Get(1).(*models.Message), args.Error(2)
}

func (m *MockTryoutService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TryoutChat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TryoutChat), args.Error(1)
}

// MockMessageService mocks the MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) SendDirect(ctx context.Context, senderID, receiverID uuid.UUID, body string, clientKey *uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body, clientKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) SendGroup(ctx context.Context, chatID, senderID uuid.UUID, body string, clientKey *uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, chatID, senderID, body, clientKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) SendSystemDirect(ctx context.Context, receiverID uuid.UUID, body, msgType string, metadata json.RawMessage) (*models.Message, error) {
	args := m.Called(ctx, receiverID, body, msgType, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) ChatHistory(ctx context.Context, chatID, userID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, chatID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) DirectHistory(ctx context.Context, userID, peerID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, userID, peerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// MockApplicationService mocks the ApplicationService
type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamApplication), args.Error(1)
}

func (m *MockApplicationService) Apply(ctx context.Context, teamID, applicantID uuid.UUID, roles []string, message string) (*models.TeamApplication, error) {
	args := m.Called(ctx, teamID, applicantID, roles, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamApplication), args.Error(1)
}

func (m *MockApplicationService) Withdraw(ctx context.Context, applicationID, actorID uuid.UUID) error {
	args := m.Called(ctx, applicationID, actorID)
	return args.Error(0)
}

func (m *MockApplicationService) Reject(ctx context.Context, applicationID, actorID uuid.UUID, reason string) error {
	args := m.Called(ctx, applicationID, actorID, reason)
	return args.Error(0)
}

func (m *MockApplicationService) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamApplication, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamApplication), args.Error(1)
}

func (m *MockApplicationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TeamApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamApplication), args.Error(1)
}

func (m *MockApplicationService) Approach(ctx context.Context, teamID, actorID, playerID uuid.UUID, message string) (*models.RecruitmentApproach, error) {
	args := m.Called(ctx, teamID, actorID, playerID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecruitmentApproach), args.Error(1)
}

func (m *MockApplicationService) RejectApproach(ctx context.Context, approachID, actorID uuid.UUID) error {
	args := m.Called(ctx, approachID, actorID)
	return args.Error(0)
}

func (m *MockApplicationService) ListApproachesForUser(ctx context.Context, userID uuid.UUID) ([]models.RecruitmentApproach, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecruitmentApproach), args.Error(1)
}

// MockConversationService mocks the ConversationService
type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) ListConversations(ctx context.Context, userID uuid.UUID) (*services.ConversationList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConversationList), args.Error(1)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) IsCaptain(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}
