package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teamscout/teamscout-api/internal/middleware"
	"github.com/teamscout/teamscout-api/internal/models"
	"github.com/teamscout/teamscout-api/internal/services"
	"github.com/teamscout/teamscout-api/pkg/dto"
	"github.com/teamscout/teamscout-api/tests/testutil"
)

func setupTryoutTest(t *testing.T) (*testutil.MockTryoutService, *testutil.MockTeamService, *TryoutHandler, *services.JWTService) {
	t.Helper()
	mockTryoutService := new(testutil.MockTryoutService)
	mockTeamService := new(testutil.MockTeamService)
	handler := NewTryoutHandler(mockTryoutService, mockTeamService)
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute)
	return mockTryoutService, mockTeamService, handler, jwtSvc
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, name string) string {
	t.Helper()
	token, err := jwtSvc.GenerateAccessToken(userID, name)
	require.NoError(t, err)
	return token
}

func TestTryoutHandler_StartFromApplication_Success(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	captainID := uuid.New()
	applicationID := uuid.New()
	chat := &models.TryoutChat{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		ApplicantID: uuid.New(),
		Origin:      models.OriginApplication,
		Status:      models.TryoutActive,
	}

	mockTryoutService.On("StartFromApplication", mock.Anything, applicationID, captainID).Return(chat, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/applications/:id/tryout", handler.StartFromApplication)

	token := generateTestToken(t, jwtSvc, captainID, "Dusk")
	req := httptest.NewRequest(http.MethodPost, "/applications/"+applicationID.String()+"/tryout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.TryoutChat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, chat.ID, got.ID)
	assert.Equal(t, models.TryoutActive, got.Status)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_StartFromApplication_Conflict(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	captainID := uuid.New()
	applicationID := uuid.New()

	mockTryoutService.On("StartFromApplication", mock.Anything, applicationID, captainID).
		Return(nil, services.ErrTryoutActive)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/applications/:id/tryout", handler.StartFromApplication)

	token := generateTestToken(t, jwtSvc, captainID, "Dusk")
	req := httptest.NewRequest(http.MethodPost, "/applications/"+applicationID.String()+"/tryout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_AcceptApproach_Forbidden(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	actorID := uuid.New()
	approachID := uuid.New()

	mockTryoutService.On("StartFromApproach", mock.Anything, approachID, actorID).
		Return(nil, services.ErrNotAuthorized)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/approaches/:id/accept", handler.AcceptApproach)

	token := generateTestToken(t, jwtSvc, actorID, "Riko")
	req := httptest.NewRequest(http.MethodPost, "/approaches/"+approachID.String()+"/accept", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_End_Success(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	captainID := uuid.New()
	chatID := uuid.New()
	endedBy := models.TryoutEndedByTeam
	chat := &models.TryoutChat{ID: chatID, Status: models.TryoutEndedByTeam, EndedBy: &endedBy}
	msg := &models.Message{ID: uuid.New(), ChatID: &chatID, Seq: 4, Type: models.MessageSystem}

	mockTryoutService.On("End", mock.Anything, chatID, captainID, "roster is full").Return(chat, msg, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/end", handler.End)

	body, _ := json.Marshal(dto.EndTryoutRequest{Reason: "roster is full"})
	token := generateTestToken(t, jwtSvc, captainID, "Dusk")
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID.String()+"/end", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got dto.TryoutTransitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.TryoutEndedByTeam, got.Chat.Status)
	assert.Equal(t, int64(4), got.Message.Seq)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_End_MissingReason(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	captainID := uuid.New()
	chatID := uuid.New()

	mockTryoutService.On("End", mock.Anything, chatID, captainID, "").
		Return(nil, nil, services.ErrReasonRequired)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/end", handler.End)

	body, _ := json.Marshal(dto.EndTryoutRequest{})
	token := generateTestToken(t, jwtSvc, captainID, "Dusk")
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID.String()+"/end", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_End_InvalidChatID(t *testing.T) {
	_, _, handler, jwtSvc := setupTryoutTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/end", handler.End)

	body, _ := json.Marshal(dto.EndTryoutRequest{Reason: "whatever"})
	token := generateTestToken(t, jwtSvc, uuid.New(), "Dusk")
	req := httptest.NewRequest(http.MethodPost, "/chats/not-a-uuid/end", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTryoutHandler_SendOffer_Success(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	captainID := uuid.New()
	chatID := uuid.New()
	offer := "join the main roster"
	chat := &models.TryoutChat{ID: chatID, Status: models.TryoutOfferSent, OfferMessage: &offer}
	msg := &models.Message{ID: uuid.New(), ChatID: &chatID, Seq: 7, Type: models.MessageInvitation}

	mockTryoutService.On("SendOffer", mock.Anything, chatID, captainID, offer).Return(chat, msg, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/offer", handler.SendOffer)

	body, _ := json.Marshal(dto.SendOfferRequest{Message: offer})
	token := generateTestToken(t, jwtSvc, captainID, "Dusk")
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID.String()+"/offer", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got dto.TryoutTransitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.TryoutOfferSent, got.Chat.Status)
	assert.Equal(t, models.MessageInvitation, got.Message.Type)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_AcceptOffer_LostRace(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	applicantID := uuid.New()
	chatID := uuid.New()

	mockTryoutService.On("AcceptOffer", mock.Anything, chatID, applicantID).
		Return(nil, nil, services.ErrInvalidTransition)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/offer/accept", handler.AcceptOffer)

	token := generateTestToken(t, jwtSvc, applicantID, "Riko")
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID.String()+"/offer/accept", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_RejectOffer_Success(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	applicantID := uuid.New()
	chatID := uuid.New()
	chat := &models.TryoutChat{ID: chatID, Status: models.TryoutOfferRejected}
	msg := &models.Message{ID: uuid.New(), ChatID: &chatID, Seq: 9, Type: models.MessageSystem}

	mockTryoutService.On("RejectOffer", mock.Anything, chatID, applicantID, "staying put").Return(chat, msg, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/offer/reject", handler.RejectOffer)

	body, _ := json.Marshal(dto.RejectOfferRequest{Reason: "staying put"})
	token := generateTestToken(t, jwtSvc, applicantID, "Riko")
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID.String()+"/offer/reject", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_List_Success(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	userID := uuid.New()
	chats := []models.TryoutChat{
		{ID: uuid.New(), ApplicantID: userID, Status: models.TryoutActive},
		{ID: uuid.New(), ApplicantID: userID, Status: models.TryoutEndedByPlayer},
	}

	mockTryoutService.On("ListForUser", mock.Anything, userID).Return(chats, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/chats", handler.List)

	token := generateTestToken(t, jwtSvc, userID, "Riko")
	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []models.TryoutChat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_Get_AsApplicant(t *testing.T) {
	mockTryoutService, _, handler, jwtSvc := setupTryoutTest(t)

	applicantID := uuid.New()
	chat := &models.TryoutChat{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		ApplicantID: applicantID,
		Origin:      models.OriginApplication,
		Status:      models.TryoutActive,
	}

	mockTryoutService.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/chats/:chatId", handler.Get)

	token := generateTestToken(t, jwtSvc, applicantID, "Riko")
	req := httptest.NewRequest(http.MethodGet, "/chats/"+chat.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.TryoutChat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, chat.ID, got.ID)
	mockTryoutService.AssertExpectations(t)
}

func TestTryoutHandler_Get_AsTeamMember(t *testing.T) {
	mockTryoutService, mockTeamService, handler, jwtSvc := setupTryoutTest(t)

	memberID := uuid.New()
	chat := &models.TryoutChat{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		ApplicantID: uuid.New(),
		Origin:      models.OriginApproach,
		Status:      models.TryoutOfferSent,
	}

	mockTryoutService.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)
	mockTeamService.On("IsMember", mock.Anything, chat.TeamID, memberID).Return(true, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/chats/:chatId", handler.Get)

	token := generateTestToken(t, jwtSvc, memberID, "Dusk")
	req := httptest.NewRequest(http.MethodGet, "/chats/"+chat.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockTryoutService.AssertExpectations(t)
	mockTeamService.AssertExpectations(t)
}

func TestTryoutHandler_Get_OutsiderGetsNotFound(t *testing.T) {
	mockTryoutService, mockTeamService, handler, jwtSvc := setupTryoutTest(t)

	outsiderID := uuid.New()
	reason := "we went with another roster"
	chat := &models.TryoutChat{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		ApplicantID: uuid.New(),
		Origin:      models.OriginApplication,
		Status:      models.TryoutEndedByTeam,
		EndReason:   &reason,
	}

	mockTryoutService.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)
	mockTeamService.On("IsMember", mock.Anything, chat.TeamID, outsiderID).Return(false, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/chats/:chatId", handler.Get)

	token := generateTestToken(t, jwtSvc, outsiderID, "Vex")
	req := httptest.NewRequest(http.MethodGet, "/chats/"+chat.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), reason)
	mockTryoutService.AssertExpectations(t)
	mockTeamService.AssertExpectations(t)
}

func TestTryoutHandler_Unauthenticated(t *testing.T) {
	_, _, handler, jwtSvc := setupTryoutTest(t)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/chats/:chatId/offer/accept", handler.AcceptOffer)

	req := httptest.NewRequest(http.MethodPost, "/chats/"+uuid.New().String()+"/offer/accept", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
