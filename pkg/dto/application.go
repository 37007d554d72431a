package dto

import "github.com/google/uuid"

type CreateApplicationRequest struct {
	TeamID  uuid.UUID `json:"team_id"`
	Roles   []string  `json:"roles"`
	Message string    `json:"message,omitempty"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

type CreateApproachRequest struct {
	TeamID   uuid.UUID `json:"team_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Message  string    `json:"message,omitempty"`
}