package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Name: fmt.Sprintf("Test Player %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (name, avatar_url, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, avatar_url, team_id, created_at, updated_at
	`, user.Name, user.AvatarURL, user.TeamID).Scan(
		&user.ID, &user.Name, &user.AvatarURL, &user.TeamID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithAvatar sets the user's avatar URL
func WithAvatar(url string) UserOption {
	return func(u *models.User) {
		u.AvatarURL = &url
	}
}

// CreateTeam creates a test team with the given captain, who is also
// enrolled as its first member.
func (f *Fixtures) CreateTeam(t *testing.T, captain *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:      fmt.Sprintf("Test Team %d", f.counter),
		CaptainID: captain.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, captain_id)
		VALUES ($1, $2)
		RETURNING id, name, captain_id, created_at, updated_at
	`, team.Name, team.CaptainID).Scan(&team.ID, &team.Name, &team.CaptainID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
	`, team.ID, captain.ID, models.RoleCaptain)
	if err != nil {
		t.Fatalf("failed to add captain as member: %v", err)
	}

	_, err = tx.Exec(ctx, `UPDATE users SET team_id = $1 WHERE id = $2`, team.ID, captain.ID)
	if err != nil {
		t.Fatalf("failed to set captain team: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(t *models.Team) {
		t.Name = name
	}
}

// AddTeamMember adds a member to a team
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, team.ID, user.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// CreateApplication creates a pending application from the player to the team
func (f *Fixtures) CreateApplication(t *testing.T, team *models.Team, applicant *models.User, opts ...ApplicationOption) *models.TeamApplication {
	t.Helper()
	f.counter++

	app := &models.TeamApplication{
		TeamID:      team.ID,
		ApplicantID: applicant.ID,
		Roles:       []string{"flex"},
		Message:     fmt.Sprintf("application %d", f.counter),
	}

	for _, opt := range opts {
		opt(app)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO team_applications (team_id, applicant_id, roles, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, team_id, applicant_id, roles, message, status, rejection_reason, created_at, updated_at
	`, app.TeamID, app.ApplicantID, app.Roles, app.Message).Scan(
		&app.ID, &app.TeamID, &app.ApplicantID, &app.Roles, &app.Message,
		&app.Status, &app.RejectionReason, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	return app
}

// ApplicationOption configures a test application
type ApplicationOption func(*models.TeamApplication)

// WithRoles sets the roles the applicant is applying for
func WithRoles(roles ...string) ApplicationOption {
	return func(a *models.TeamApplication) {
		a.Roles = roles
	}
}

// CreateApproach creates a pending recruitment approach from the team to the player
func (f *Fixtures) CreateApproach(t *testing.T, team *models.Team, player *models.User) *models.RecruitmentApproach {
	t.Helper()
	f.counter++

	approach := &models.RecruitmentApproach{
		TeamID:   team.ID,
		PlayerID: player.ID,
		Message:  fmt.Sprintf("approach %d", f.counter),
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO recruitment_approaches (team_id, player_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, player_id, message, status, created_at, updated_at
	`, approach.TeamID, approach.PlayerID, approach.Message).Scan(
		&approach.ID, &approach.TeamID, &approach.PlayerID, &approach.Message,
		&approach.Status, &approach.CreatedAt, &approach.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create approach: %v", err)
	}

	return approach
}

// CreateTryoutChat opens an active tryout chat directly, bypassing the
// application flow. The linked application is marked in_tryout when given.
func (f *Fixtures) CreateTryoutChat(t *testing.T, team *models.Team, applicant *models.User, application *models.TeamApplication) *models.TryoutChat {
	t.Helper()

	chat := &models.TryoutChat{
		TeamID:      team.ID,
		ApplicantID: applicant.ID,
		Origin:      models.OriginApplication,
	}
	if application != nil {
		chat.ApplicationID = &application.ID
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO tryout_chats (team_id, applicant_id, origin, application_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, team_id, applicant_id, origin, application_id, approach_id, status,
			offer_message, offer_sender_id, offer_sent_at, ended_by, end_reason, created_at, updated_at
	`, chat.TeamID, chat.ApplicantID, chat.Origin, chat.ApplicationID).Scan(
		&chat.ID, &chat.TeamID, &chat.ApplicantID, &chat.Origin,
		&chat.ApplicationID, &chat.ApproachID, &chat.Status,
		&chat.OfferMessage, &chat.OfferSenderID, &chat.OfferSentAt,
		&chat.EndedBy, &chat.EndReason, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create tryout chat: %v", err)
	}

	if application != nil {
		_, err := f.db.Pool.Exec(ctx,
			`UPDATE team_applications SET status = $1 WHERE id = $2`,
			models.ApplicationInTryout, application.ID)
		if err != nil {
			t.Fatalf("failed to mark application in tryout: %v", err)
		}
	}

	return chat
}
