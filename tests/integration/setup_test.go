package integration

import (
	"os"
	"testing"

	"github.com/teamscout/teamscout-api/internal/hub"
	"github.com/teamscout/teamscout-api/internal/services"
	"github.com/teamscout/teamscout-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// setupTest creates a test database and returns cleanup function
func setupTest(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDB(t)
}

// stack bundles the service graph the way main wires it, on top of a test
// database and a running hub.
type stack struct {
	tdb          *testutil.TestDB
	fixtures     *testutil.Fixtures
	hub          *hub.Hub
	teams        *services.TeamService
	messages     *services.MessageService
	tryouts      *services.TryoutService
	applications *services.ApplicationService
}

func setupStack(t *testing.T) *stack {
	t.Helper()

	tdb := setupTest(t)
	eventHub := hub.NewHub()
	go eventHub.Run()

	teams := services.NewTeamService(tdb.DB)
	locks := services.NewChatLocks()
	messages := services.NewMessageService(tdb.DB, eventHub, locks)
	tryouts := services.NewTryoutService(tdb.DB, eventHub, teams, locks)
	applications := services.NewApplicationService(tdb.DB, teams, messages, eventHub)

	return &stack{
		tdb:          tdb,
		fixtures:     testutil.NewFixtures(tdb.DB),
		hub:          eventHub,
		teams:        teams,
		messages:     messages,
		tryouts:      tryouts,
		applications: applications,
	}
}
