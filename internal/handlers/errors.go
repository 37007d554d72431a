package handlers

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamscout/teamscout-api/internal/services"
)

// respondServiceError maps service sentinels onto HTTP responses. Lost
// races and wrong-state transitions come back as 409 so the client knows to
// refresh chat state rather than retry blindly.
func respondServiceError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthorized):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrRolesRequired),
		errors.Is(err, services.ErrEmptyMessage):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrChatClosed),
		errors.Is(err, services.ErrTryoutActive),
		errors.Is(err, services.ErrAlreadyApplied):
		_ = c.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrReceiverNotFound),
		errors.Is(err, pgx.ErrNoRows):
		c.NotFound("not found")
	default:
		c.InternalServerError("something went wrong")
	}
}
