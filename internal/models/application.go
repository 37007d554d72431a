package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamApplication statuses. accepted, rejected and withdrawn are terminal.
const (
	ApplicationPending   = "pending"
	ApplicationInTryout  = "in_tryout"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

type TeamApplication struct {
	ID              uuid.UUID  `json:"id"`
	TeamID          uuid.UUID  `json:"team_id"`
	ApplicantID     uuid.UUID  `json:"applicant_id"`
	Roles           []string   `json:"roles"`
	Message         string     `json:"message"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Applicant       *User      `json:"applicant,omitempty"`
	Team            *Team      `json:"team,omitempty"`
}

// RecruitmentApproach statuses.
const (
	ApproachPending  = "pending"
	ApproachAccepted = "accepted"
	ApproachRejected = "rejected"
)

// RecruitmentApproach is a team's outreach to a player found via a
// looking-for-team post. Accepting one opens a TryoutChat, same as a
// captain starting a tryout from an application.
type RecruitmentApproach struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Team      *Team     `json:"team,omitempty"`
}
