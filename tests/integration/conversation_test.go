package integration

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamscout/teamscout-api/internal/cache"
	"github.com/teamscout/teamscout-api/internal/models"
	"github.com/teamscout/teamscout-api/internal/services"
)

func TestConversation_Integration_List(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupStack(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	snapshots, err := cache.New("redis://" + mr.Addr())
	require.NoError(t, err)

	users := services.NewUserService(s.tdb.DB)
	conversations := services.NewConversationService(s.tdb.DB, users, snapshots)

	captain := s.fixtures.CreateUser(t)
	player := s.fixtures.CreateUser(t)
	friend := s.fixtures.CreateUser(t)
	team := s.fixtures.CreateTeam(t, captain)
	app := s.fixtures.CreateApplication(t, team, player)
	s.fixtures.CreateTryoutChat(t, team, player, app)

	_, err = s.messages.SendDirect(ctx, friend.ID, player.ID, "saw your tryout, good luck", nil)
	require.NoError(t, err)

	list, err := conversations.ListConversations(ctx, player.ID)
	require.NoError(t, err)
	assert.False(t, list.Stale)

	// System thread first, then the DM peer, then the application's
	// captain who has no messages yet.
	require.Len(t, list.Peers, 3)
	assert.Equal(t, models.SystemUserID, list.Peers[0].User.ID)
	assert.Equal(t, friend.ID, list.Peers[1].User.ID)
	require.NotNil(t, list.Peers[1].LastMessageAt)
	assert.Equal(t, captain.ID, list.Peers[2].User.ID)
	assert.Nil(t, list.Peers[2].LastMessageAt)

	require.Len(t, list.Tryouts, 1)
	assert.Equal(t, team.Name, list.Tryouts[0].TeamName)
	assert.Equal(t, models.TryoutActive, list.Tryouts[0].Status)

	// The captain sees the same chat from the team side.
	captainList, err := conversations.ListConversations(ctx, captain.ID)
	require.NoError(t, err)
	require.Len(t, captainList.Tryouts, 1)
}
