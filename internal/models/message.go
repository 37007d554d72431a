package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message types. The type determines which metadata shape the message
// carries; text messages carry only a body.
const (
	MessageText                = "text"
	MessageSystem              = "system"
	MessageInvitation          = "invitation"
	MessageTournamentReference = "tournament_reference"
	MessageTournamentInvite    = "tournament_invite"
)

// Message is a direct or group chat message. Exactly one of ChatID and
// ReceiverID is set for user messages; SenderID is nil for the system
// sentinel. ClientKey echoes the client-generated id back so optimistic UI
// copies reconcile by exact key match. Seq is the per-conversation sequence
// assigned under the conversation write lock.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	ChatID     *uuid.UUID      `json:"chat_id,omitempty"`
	SenderID   *uuid.UUID      `json:"sender_id,omitempty"`
	ReceiverID *uuid.UUID      `json:"receiver_id,omitempty"`
	ClientKey  *uuid.UUID      `json:"client_key,omitempty"`
	Seq        int64           `json:"seq"`
	Body       string          `json:"body"`
	Type       string          `json:"type"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsSystem reports whether the message was generated by the server rather
// than a participant.
func (m *Message) IsSystem() bool {
	return m.SenderID == nil
}

// Metadata payloads, one fixed shape per message type that carries one.

// TryoutEndedMetadata records who ended a tryout and why.
type TryoutEndedMetadata struct {
	ActorID uuid.UUID `json:"actor_id"`
	EndedBy string    `json:"ended_by"`
	Reason  string    `json:"reason"`
}

// OfferMetadata rides on invitation messages produced by SendOffer and on
// the accept/reject system messages that resolve the offer.
type OfferMetadata struct {
	ChatID       uuid.UUID `json:"chat_id"`
	TeamID       uuid.UUID `json:"team_id"`
	OfferMessage string    `json:"offer_message,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// TournamentMetadata rides on tournament_reference and tournament_invite
// messages forwarded from the notification surface.
type TournamentMetadata struct {
	TournamentID uuid.UUID  `json:"tournament_id"`
	TeamID       *uuid.UUID `json:"team_id,omitempty"`
}

// EncodeMetadata marshals a typed metadata payload for storage.
func EncodeMetadata(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message metadata: %w", err)
	}
	return data, nil
}
