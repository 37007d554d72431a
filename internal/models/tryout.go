package models

import (
	"time"

	"github.com/google/uuid"
)

// Tryout chat statuses. active is the only state that accepts lifecycle
// transitions other than accept/reject-offer; everything except active and
// offer_sent is terminal.
const (
	TryoutActive        = "active"
	TryoutOfferSent     = "offer_sent"
	TryoutOfferAccepted = "offer_accepted"
	TryoutOfferRejected = "offer_rejected"
	TryoutEndedByTeam   = "ended_by_team"
	TryoutEndedByPlayer = "ended_by_player"
)

// TryoutOrigin values record which recruitment path opened the chat.
const (
	OriginApplication = "application"
	OriginApproach    = "approach"
)

type TryoutChat struct {
	ID            uuid.UUID  `json:"id"`
	TeamID        uuid.UUID  `json:"team_id"`
	ApplicantID   uuid.UUID  `json:"applicant_id"`
	Origin        string     `json:"origin"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	ApproachID    *uuid.UUID `json:"approach_id,omitempty"`
	Status        string     `json:"status"`
	OfferMessage  *string    `json:"offer_message,omitempty"`
	OfferSenderID *uuid.UUID `json:"offer_sender_id,omitempty"`
	OfferSentAt   *time.Time `json:"offer_sent_at,omitempty"`
	EndedBy       *string    `json:"ended_by,omitempty"`
	EndReason     *string    `json:"end_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Team          *Team      `json:"team,omitempty"`
	Applicant     *User      `json:"applicant,omitempty"`
}

// IsTerminalTryoutStatus reports whether no further transitions or messages
// are possible for a chat in the given status.
func IsTerminalTryoutStatus(status string) bool {
	switch status {
	case TryoutOfferAccepted, TryoutOfferRejected, TryoutEndedByTeam, TryoutEndedByPlayer:
		return true
	}
	return false
}
