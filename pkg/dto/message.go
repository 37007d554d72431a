package dto

import "github.com/google/uuid"

type SendDirectMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Body       string     `json:"body"`
	ClientKey  *uuid.UUID `json:"client_key,omitempty"`
}

type SendGroupMessageRequest struct {
	Body      string     `json:"body"`
	ClientKey *uuid.UUID `json:"client_key,omitempty"`
}
