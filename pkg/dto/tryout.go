package dto

import (
	"github.com/teamscout/teamscout-api/internal/models"
)

type EndTryoutRequest struct {
	Reason string `json:"reason"`
}

type SendOfferRequest struct {
	Message string `json:"message,omitempty"`
}

type RejectOfferRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TryoutTransitionResponse is returned by every lifecycle endpoint: the
// chat's new state plus the system message the transition produced.
type TryoutTransitionResponse struct {
	Chat    *models.TryoutChat `json:"chat"`
	Message *models.Message    `json:"message"`
}
