package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a read model fed by the external identity provider. The chat
// subsystem never creates users; the only field it mutates is the team
// affiliation, written when an offer is accepted.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SystemUserID is the sentinel sender for server-generated messages and the
// synthetic "system notifications" peer in conversation lists.
var SystemUserID = uuid.Nil
