package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/models"
)

// TeamService reads team and roster facts owned by the external platform.
// The only mutation the chat subsystem performs is AddMember, the roster
// side effect of an accepted offer.
type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, captain_id, created_at, updated_at
		FROM teams WHERE id = $1
	`, teamID).Scan(&team.ID, &team.Name, &team.CaptainID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// CaptainID reads the authoritative captain for a team. Lifecycle
// transitions verify actors against this, never against client role claims.
func (s *TeamService) CaptainID(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	var captainID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT captain_id FROM teams WHERE id = $1`, teamID).Scan(&captainID)
	if err != nil {
		return uuid.Nil, err
	}
	return captainID, nil
}

func (s *TeamService) IsCaptain(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	captainID, err := s.CaptainID(ctx, teamID)
	if err != nil {
		return false, err
	}
	return captainID == userID, nil
}

func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.created_at,
		       u.id, u.name, u.avatar_url, u.team_id, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Name, &user.AvatarURL, &user.TeamID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, nil
}

// AddMember puts a user on the roster and mirrors the affiliation on the
// user row. Runs inside the accept-offer transaction via the querier.
func (s *TeamService) AddMember(ctx context.Context, q Querier, teamID, userID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, models.RoleMember)
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}

	_, err = q.Exec(ctx, `
		UPDATE users SET team_id = $1, updated_at = NOW() WHERE id = $2
	`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to update user team affiliation: %w", err)
	}
	return nil
}
