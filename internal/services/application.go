package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/hub"
	"github.com/teamscout/teamscout-api/internal/models"
)

var (
	ErrRolesRequired  = errors.New("at least one role is required")
	ErrAlreadyApplied = errors.New("a live application already exists for this team")
)

// ApplicationService owns team applications and recruitment approaches up to
// the point a tryout starts; from there the state machine takes over.
type ApplicationService struct {
	db       *database.DB
	teams    *TeamService
	messages *MessageService
	hub      hub.Broadcaster
}

func NewApplicationService(db *database.DB, teams *TeamService, messages *MessageService, broadcaster hub.Broadcaster) *ApplicationService {
	return &ApplicationService{db: db, teams: teams, messages: messages, hub: broadcaster}
}

func (s *ApplicationService) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamApplication, error) {
	var app models.TeamApplication
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, applicant_id, roles, message, status, rejection_reason, created_at, updated_at
		FROM team_applications WHERE id = $1
	`, id).Scan(
		&app.ID, &app.TeamID, &app.ApplicantID, &app.Roles, &app.Message,
		&app.Status, &app.RejectionReason, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Apply files a pending application. One live application per
// (team, applicant); the partial unique index backs this up, the explicit
// check gives callers a clean error.
func (s *ApplicationService) Apply(ctx context.Context, teamID, applicantID uuid.UUID, roles []string, message string) (*models.TeamApplication, error) {
	if len(roles) == 0 {
		return nil, ErrRolesRequired
	}

	var live bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM team_applications
			WHERE team_id = $1 AND applicant_id = $2 AND status IN ($3, $4)
		)
	`, teamID, applicantID, models.ApplicationPending, models.ApplicationInTryout).Scan(&live)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing applications: %w", err)
	}
	if live {
		return nil, ErrAlreadyApplied
	}

	var app models.TeamApplication
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO team_applications (team_id, applicant_id, roles, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, team_id, applicant_id, roles, message, status, rejection_reason, created_at, updated_at
	`, teamID, applicantID, roles, message).Scan(
		&app.ID, &app.TeamID, &app.ApplicantID, &app.Roles, &app.Message,
		&app.Status, &app.RejectionReason, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	// Ping the captain; a miss here is recoverable from the application list.
	if captainID, err := s.teams.CaptainID(ctx, teamID); err == nil {
		s.hub.ToUser(captainID, hub.Event{Type: hub.EventApplication, Data: app})
	}

	return &app, nil
}

// Withdraw cancels a pending application. Applicant only.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, actorID uuid.UUID) error {
	app, err := s.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != actorID {
		return ErrNotAuthorized
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE team_applications SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.ApplicationWithdrawn, applicationID, models.ApplicationPending)
	if err != nil {
		return fmt.Errorf("failed to withdraw application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// Reject declines a pending application with a reason. Captain only.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, actorID uuid.UUID, reason string) error {
	app, err := s.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}

	captainID, err := s.teams.CaptainID(ctx, app.TeamID)
	if err != nil {
		return err
	}
	if actorID != captainID {
		return ErrNotAuthorized
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE team_applications SET status = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, models.ApplicationRejected, reason, applicationID, models.ApplicationPending)
	if err != nil {
		return fmt.Errorf("failed to reject application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *ApplicationService) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamApplication, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT a.id, a.team_id, a.applicant_id, a.roles, a.message, a.status, a.rejection_reason,
		       a.created_at, a.updated_at,
		       u.id, u.name, u.avatar_url, u.team_id, u.created_at, u.updated_at
		FROM team_applications a
		JOIN users u ON a.applicant_id = u.id
		WHERE a.team_id = $1
		ORDER BY a.created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.TeamApplication
	for rows.Next() {
		var app models.TeamApplication
		var user models.User
		if err := rows.Scan(
			&app.ID, &app.TeamID, &app.ApplicantID, &app.Roles, &app.Message,
			&app.Status, &app.RejectionReason, &app.CreatedAt, &app.UpdatedAt,
			&user.ID, &user.Name, &user.AvatarURL, &user.TeamID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		app.Applicant = &user
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *ApplicationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TeamApplication, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT a.id, a.team_id, a.applicant_id, a.roles, a.message, a.status, a.rejection_reason,
		       a.created_at, a.updated_at,
		       t.id, t.name, t.captain_id, t.created_at, t.updated_at
		FROM team_applications a
		JOIN teams t ON a.team_id = t.id
		WHERE a.applicant_id = $1
		ORDER BY a.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.TeamApplication
	for rows.Next() {
		var app models.TeamApplication
		var team models.Team
		if err := rows.Scan(
			&app.ID, &app.TeamID, &app.ApplicantID, &app.Roles, &app.Message,
			&app.Status, &app.RejectionReason, &app.CreatedAt, &app.UpdatedAt,
			&team.ID, &team.Name, &team.CaptainID, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		app.Team = &team
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Approach reaches out to a player on behalf of a team. Captain only. The
// player gets a system invitation message plus a live push.
func (s *ApplicationService) Approach(ctx context.Context, teamID, actorID, playerID uuid.UUID, message string) (*models.RecruitmentApproach, error) {
	captainID, err := s.teams.CaptainID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if actorID != captainID {
		return nil, ErrNotAuthorized
	}

	var approach models.RecruitmentApproach
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO recruitment_approaches (team_id, player_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, player_id, message, status, created_at, updated_at
	`, teamID, playerID, message).Scan(
		&approach.ID, &approach.TeamID, &approach.PlayerID, &approach.Message,
		&approach.Status, &approach.CreatedAt, &approach.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create approach: %w", err)
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	metadata, err := models.EncodeMetadata(map[string]uuid.UUID{"approach_id": approach.ID, "team_id": teamID})
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("%s wants to recruit you", team.Name)
	if _, err := s.messages.SendSystemDirect(ctx, playerID, body, models.MessageInvitation, metadata); err != nil {
		return nil, err
	}

	s.hub.ToUser(playerID, hub.Event{Type: hub.EventTeamInvite, Data: approach})

	return &approach, nil
}

// RejectApproach declines a pending approach. Approached player only.
// Accepting one goes through TryoutService.StartFromApproach instead.
func (s *ApplicationService) RejectApproach(ctx context.Context, approachID, actorID uuid.UUID) error {
	var playerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT player_id FROM recruitment_approaches WHERE id = $1
	`, approachID).Scan(&playerID)
	if err != nil {
		return err
	}
	if playerID != actorID {
		return ErrNotAuthorized
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE recruitment_approaches SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.ApproachRejected, approachID, models.ApproachPending)
	if err != nil {
		return fmt.Errorf("failed to reject approach: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *ApplicationService) ListApproachesForUser(ctx context.Context, userID uuid.UUID) ([]models.RecruitmentApproach, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT a.id, a.team_id, a.player_id, a.message, a.status, a.created_at, a.updated_at,
		       t.id, t.name, t.captain_id, t.created_at, t.updated_at
		FROM recruitment_approaches a
		JOIN teams t ON a.team_id = t.id
		WHERE a.player_id = $1
		ORDER BY a.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approaches []models.RecruitmentApproach
	for rows.Next() {
		var approach models.RecruitmentApproach
		var team models.Team
		if err := rows.Scan(
			&approach.ID, &approach.TeamID, &approach.PlayerID, &approach.Message,
			&approach.Status, &approach.CreatedAt, &approach.UpdatedAt,
			&team.ID, &team.Name, &team.CaptainID, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		approach.Team = &team
		approaches = append(approaches, approach)
	}
	return approaches, rows.Err()
}
