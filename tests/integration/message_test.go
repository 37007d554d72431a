package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamscout/teamscout-api/internal/models"
	"github.com/teamscout/teamscout-api/internal/services"
	"github.com/teamscout/teamscout-api/tests/testutil"
)

func TestMessage_Integration_DirectRoundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupStack(t)
	ctx := context.Background()

	alice := s.fixtures.CreateUser(t, testutil.WithName("Alice"))
	bob := s.fixtures.CreateUser(t)

	clientKey := uuid.New()
	sent, err := s.messages.SendDirect(ctx, alice.ID, bob.ID, "duo queue tonight?", &clientKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent.Seq)
	require.NotNil(t, sent.ClientKey)
	assert.Equal(t, clientKey, *sent.ClientKey)

	reply, err := s.messages.SendDirect(ctx, bob.ID, alice.ID, "sure, invite me", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reply.Seq)

	// Both participants see the same ordered thread.
	forAlice, err := s.messages.DirectHistory(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	forBob, err := s.messages.DirectHistory(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, forAlice, 2)
	require.Len(t, forBob, 2)
	assert.Equal(t, forAlice[0].ID, forBob[0].ID)
	assert.Equal(t, "duo queue tonight?", forAlice[0].Body)
}

func TestMessage_Integration_DirectSeqIsPerPair(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupStack(t)
	ctx := context.Background()

	alice := s.fixtures.CreateUser(t)
	bob := s.fixtures.CreateUser(t)
	carol := s.fixtures.CreateUser(t)

	_, err := s.messages.SendDirect(ctx, alice.ID, bob.ID, "one", nil)
	require.NoError(t, err)
	_, err = s.messages.SendDirect(ctx, alice.ID, bob.ID, "two", nil)
	require.NoError(t, err)

	// A fresh pair starts its own sequence.
	first, err := s.messages.SendDirect(ctx, alice.ID, carol.ID, "hey carol", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)
}

func TestMessage_Integration_SendToUnknownReceiver(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupStack(t)
	ctx := context.Background()

	alice := s.fixtures.CreateUser(t)

	_, err := s.messages.SendDirect(ctx, alice.ID, uuid.New(), "anyone there?", nil)
	assert.ErrorIs(t, err, services.ErrReceiverNotFound)
}

func TestMessage_Integration_ChatHistoryOutsider(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupStack(t)
	ctx := context.Background()

	captain := s.fixtures.CreateUser(t)
	player := s.fixtures.CreateUser(t)
	outsider := s.fixtures.CreateUser(t)
	team := s.fixtures.CreateTeam(t, captain)
	app := s.fixtures.CreateApplication(t, team, player)
	chat := s.fixtures.CreateTryoutChat(t, team, player, app)

	_, err := s.messages.ChatHistory(ctx, chat.ID, outsider.ID)
	assert.ErrorIs(t, err, services.ErrNotAuthorized)

	_, err = s.messages.SendGroup(ctx, chat.ID, outsider.ID, "let me in", nil)
	assert.ErrorIs(t, err, services.ErrNotAuthorized)
}

func TestMessage_Integration_SystemNotificationThread(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupStack(t)
	ctx := context.Background()

	player := s.fixtures.CreateUser(t)

	sent, err := s.messages.SendSystemDirect(ctx, player.ID, "Welcome to TeamScout", models.MessageSystem, nil)
	require.NoError(t, err)
	assert.True(t, sent.IsSystem())

	history, err := s.messages.DirectHistory(ctx, player.ID, models.SystemUserID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Welcome to TeamScout", history[0].Body)
}
