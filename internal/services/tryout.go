package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/hub"
	"github.com/teamscout/teamscout-api/internal/models"
)

var (
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidTransition = errors.New("invalid tryout transition")
	ErrReasonRequired    = errors.New("a reason is required to end a tryout")
	ErrTryoutActive      = errors.New("an active tryout already exists for this applicant")
)

const chatColumns = `id, team_id, applicant_id, origin, application_id, approach_id, status,
	offer_message, offer_sender_id, offer_sent_at, ended_by, end_reason, created_at, updated_at`

// TryoutService owns the tryout chat lifecycle. Every transition verifies
// the actor against captain/applicant facts read from the database and
// commits the status flip, its side effects and the system message in one
// transaction. The status update is a compare-and-set on the expected source
// state, so a lost race surfaces as ErrInvalidTransition with no effects.
type TryoutService struct {
	db    *database.DB
	hub   hub.Broadcaster
	teams *TeamService
	locks *ChatLocks
}

func NewTryoutService(db *database.DB, broadcaster hub.Broadcaster, teams *TeamService, locks *ChatLocks) *TryoutService {
	return &TryoutService{db: db, hub: broadcaster, teams: teams, locks: locks}
}

func (s *TryoutService) GetByID(ctx context.Context, chatID uuid.UUID) (*models.TryoutChat, error) {
	return loadChat(ctx, s.db.Pool, chatID)
}

// StartFromApplication opens a tryout chat from a pending application. Only
// the team captain may start one, and only while no other non-terminal chat
// exists for the (team, applicant) pair.
func (s *TryoutService) StartFromApplication(ctx context.Context, applicationID, actorID uuid.UUID) (*models.TryoutChat, error) {
	var (
		teamID      uuid.UUID
		applicantID uuid.UUID
		status      string
	)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT team_id, applicant_id, status FROM team_applications WHERE id = $1
	`, applicationID).Scan(&teamID, &applicantID, &status)
	if err != nil {
		return nil, err
	}

	captainID, err := s.teams.CaptainID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if actorID != captainID {
		return nil, ErrNotAuthorized
	}
	if status != models.ApplicationPending {
		return nil, ErrInvalidTransition
	}

	chat, msg, err := s.openChat(ctx, teamID, applicantID, models.OriginApplication, &applicationID, nil, func(tx Querier) error {
		tag, err := tx.Exec(ctx, `
			UPDATE team_applications SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.ApplicationInTryout, applicationID, models.ApplicationPending)
		if err != nil {
			return fmt.Errorf("failed to move application to tryout: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := hub.Event{Type: hub.EventTryoutStarted, ChatID: &chat.ID, Data: transitionEvent{Chat: chat, Message: msg}}
	s.hub.ToUser(applicantID, event)
	s.hub.ToUser(captainID, event)

	return chat, nil
}

// StartFromApproach opens a tryout chat when the approached player accepts a
// team's recruitment approach.
func (s *TryoutService) StartFromApproach(ctx context.Context, approachID, actorID uuid.UUID) (*models.TryoutChat, error) {
	var (
		teamID   uuid.UUID
		playerID uuid.UUID
		status   string
	)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT team_id, player_id, status FROM recruitment_approaches WHERE id = $1
	`, approachID).Scan(&teamID, &playerID, &status)
	if err != nil {
		return nil, err
	}

	if actorID != playerID {
		return nil, ErrNotAuthorized
	}
	if status != models.ApproachPending {
		return nil, ErrInvalidTransition
	}

	chat, msg, err := s.openChat(ctx, teamID, playerID, models.OriginApproach, nil, &approachID, func(tx Querier) error {
		tag, err := tx.Exec(ctx, `
			UPDATE recruitment_approaches SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.ApproachAccepted, approachID, models.ApproachPending)
		if err != nil {
			return fmt.Errorf("failed to accept approach: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	captainID, err := s.teams.CaptainID(ctx, teamID)
	event := hub.Event{Type: hub.EventTryoutStarted, ChatID: &chat.ID, Data: transitionEvent{Chat: chat, Message: msg}}
	s.hub.ToUser(playerID, event)
	if err == nil {
		s.hub.ToUser(captainID, event)
	}

	return chat, nil
}

// End closes an active tryout. The captain ends it as the team, the
// applicant as the player; anyone else is rejected. A non-empty reason is
// mandatory.
func (s *TryoutService) End(ctx context.Context, chatID, actorID uuid.UUID, reason string) (*models.TryoutChat, *models.Message, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, ErrReasonRequired
	}

	chat, err := loadChat(ctx, s.db.Pool, chatID)
	if err != nil {
		return nil, nil, err
	}

	captainID, err := s.teams.CaptainID(ctx, chat.TeamID)
	if err != nil {
		return nil, nil, err
	}

	var newStatus, body, appStatus string
	switch actorID {
	case captainID:
		newStatus = models.TryoutEndedByTeam
		body = "The team ended the tryout: " + reason
		appStatus = models.ApplicationRejected
	case chat.ApplicantID:
		newStatus = models.TryoutEndedByPlayer
		body = "The player ended the tryout: " + reason
		appStatus = models.ApplicationWithdrawn
	default:
		return nil, nil, ErrNotAuthorized
	}

	metadata, err := models.EncodeMetadata(models.TryoutEndedMetadata{
		ActorID: actorID,
		EndedBy: newStatus,
		Reason:  reason,
	})
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(chatKey(chatID))
	defer unlock()

	updated, msg, err := s.transition(ctx, chatID, body, models.MessageSystem, metadata, func(tx Querier) (pgxRow, error) {
		return tx.QueryRow(ctx, `
			UPDATE tryout_chats
			SET status = $1, ended_by = $2, end_reason = $3, updated_at = NOW()
			WHERE id = $4 AND status = $5
			RETURNING `+chatColumns,
			newStatus, newStatus, reason, chatID, models.TryoutActive,
		), nil
	}, func(tx Querier, updated *models.TryoutChat) error {
		return s.settleApplication(ctx, tx, updated, appStatus, reason)
	})
	if err != nil {
		return nil, nil, err
	}

	s.announce(hub.EventTryoutEnded, updated, msg, captainID)

	return updated, msg, nil
}

// SendOffer moves an active tryout to offer_sent. Captain only.
func (s *TryoutService) SendOffer(ctx context.Context, chatID, actorID uuid.UUID, offerMessage string) (*models.TryoutChat, *models.Message, error) {
	chat, err := loadChat(ctx, s.db.Pool, chatID)
	if err != nil {
		return nil, nil, err
	}

	captainID, err := s.teams.CaptainID(ctx, chat.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if actorID != captainID {
		return nil, nil, ErrNotAuthorized
	}

	body := "The team sent a roster offer"
	if strings.TrimSpace(offerMessage) != "" {
		body = "The team sent a roster offer: " + offerMessage
	}

	metadata, err := models.EncodeMetadata(models.OfferMetadata{
		ChatID:       chatID,
		TeamID:       chat.TeamID,
		OfferMessage: offerMessage,
	})
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(chatKey(chatID))
	defer unlock()

	updated, msg, err := s.transition(ctx, chatID, body, models.MessageInvitation, metadata, func(tx Querier) (pgxRow, error) {
		return tx.QueryRow(ctx, `
			UPDATE tryout_chats
			SET status = $1, offer_message = $2, offer_sender_id = $3, offer_sent_at = NOW(), updated_at = NOW()
			WHERE id = $4 AND status = $5
			RETURNING `+chatColumns,
			models.TryoutOfferSent, offerMessage, actorID, chatID, models.TryoutActive,
		), nil
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	s.announce(hub.EventOfferSent, updated, msg, captainID)

	return updated, msg, nil
}

// AcceptOffer moves an offer_sent tryout to offer_accepted. Applicant only.
// The roster mutation and the application flip commit atomically with the
// status change; a failure in any of them rolls everything back.
func (s *TryoutService) AcceptOffer(ctx context.Context, chatID, actorID uuid.UUID) (*models.TryoutChat, *models.Message, error) {
	chat, err := loadChat(ctx, s.db.Pool, chatID)
	if err != nil {
		return nil, nil, err
	}
	if actorID != chat.ApplicantID {
		return nil, nil, ErrNotAuthorized
	}

	metadata, err := models.EncodeMetadata(models.OfferMetadata{ChatID: chatID, TeamID: chat.TeamID})
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(chatKey(chatID))
	defer unlock()

	updated, msg, err := s.transition(ctx, chatID, "The player accepted the roster offer", models.MessageSystem, metadata, func(tx Querier) (pgxRow, error) {
		return tx.QueryRow(ctx, `
			UPDATE tryout_chats SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
			RETURNING `+chatColumns,
			models.TryoutOfferAccepted, chatID, models.TryoutOfferSent,
		), nil
	}, func(tx Querier, updated *models.TryoutChat) error {
		if err := s.teams.AddMember(ctx, tx, updated.TeamID, updated.ApplicantID); err != nil {
			return err
		}
		return s.settleApplication(ctx, tx, updated, models.ApplicationAccepted, "")
	})
	if err != nil {
		return nil, nil, err
	}

	captainID, capErr := s.teams.CaptainID(ctx, updated.TeamID)
	if capErr != nil {
		captainID = uuid.Nil
	}
	s.announce(hub.EventOfferAccepted, updated, msg, captainID)

	return updated, msg, nil
}

// RejectOffer moves an offer_sent tryout to offer_rejected. Applicant only;
// the reason is optional.
func (s *TryoutService) RejectOffer(ctx context.Context, chatID, actorID uuid.UUID, reason string) (*models.TryoutChat, *models.Message, error) {
	chat, err := loadChat(ctx, s.db.Pool, chatID)
	if err != nil {
		return nil, nil, err
	}
	if actorID != chat.ApplicantID {
		return nil, nil, ErrNotAuthorized
	}

	reason = strings.TrimSpace(reason)
	body := "The player declined the roster offer"
	if reason != "" {
		body = "The player declined the roster offer: " + reason
	}

	metadata, err := models.EncodeMetadata(models.OfferMetadata{ChatID: chatID, TeamID: chat.TeamID, Reason: reason})
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(chatKey(chatID))
	defer unlock()

	updated, msg, err := s.transition(ctx, chatID, body, models.MessageSystem, metadata, func(tx Querier) (pgxRow, error) {
		return tx.QueryRow(ctx, `
			UPDATE tryout_chats SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
			RETURNING `+chatColumns,
			models.TryoutOfferRejected, chatID, models.TryoutOfferSent,
		), nil
	}, func(tx Querier, updated *models.TryoutChat) error {
		return s.settleApplication(ctx, tx, updated, models.ApplicationWithdrawn, "")
	})
	if err != nil {
		return nil, nil, err
	}

	captainID, capErr := s.teams.CaptainID(ctx, updated.TeamID)
	if capErr != nil {
		captainID = uuid.Nil
	}
	s.announce(hub.EventOfferRejected, updated, msg, captainID)

	return updated, msg, nil
}

// ListForUser returns the tryout chats the user participates in, newest
// activity first.
func (s *TryoutService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TryoutChat, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+prefixedChatColumns("c")+`
		FROM tryout_chats c
		WHERE c.applicant_id = $1
		   OR c.team_id IN (SELECT team_id FROM team_members WHERE user_id = $1)
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.TryoutChat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

type transitionEvent struct {
	Chat    *models.TryoutChat `json:"chat"`
	Message *models.Message    `json:"message"`
}

// openChat creates the chat row, runs the origin's status flip and records
// the opening system message, all in one transaction.
func (s *TryoutService) openChat(ctx context.Context, teamID, applicantID uuid.UUID, origin string, applicationID, approachID *uuid.UUID, flipOrigin func(tx Querier) error) (*models.TryoutChat, *models.Message, error) {
	var open bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM tryout_chats
			WHERE team_id = $1 AND applicant_id = $2 AND status IN ($3, $4)
		)
	`, teamID, applicantID, models.TryoutActive, models.TryoutOfferSent).Scan(&open)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check open tryouts: %w", err)
	}
	if open {
		return nil, nil, ErrTryoutActive
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	chat, err := scanChat(tx.QueryRow(ctx, `
		INSERT INTO tryout_chats (team_id, applicant_id, origin, application_id, approach_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+chatColumns,
		teamID, applicantID, origin, applicationID, approachID, models.TryoutActive,
	))
	if err != nil {
		// The partial unique index on open chats backstops the check above
		// when two starts race.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil, ErrTryoutActive
		}
		return nil, nil, fmt.Errorf("failed to create tryout chat: %w", err)
	}

	if err := flipOrigin(tx); err != nil {
		return nil, nil, err
	}

	msg, err := insertChatMessage(ctx, tx, chat.ID, nil, nil, "Tryout started", models.MessageSystem, nil)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return chat, msg, nil
}

// transition runs one lifecycle step: the CAS update, optional side
// effects, and the system message, atomically. A CAS miss (chat no longer in
// the expected state) rolls back and reports ErrInvalidTransition.
func (s *TryoutService) transition(ctx context.Context, chatID uuid.UUID, body, msgType string, metadata json.RawMessage, cas func(tx Querier) (pgxRow, error), sideEffects func(tx Querier, updated *models.TryoutChat) error) (*models.TryoutChat, *models.Message, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row, err := cas(tx)
	if err != nil {
		return nil, nil, err
	}

	updated, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidTransition
		}
		return nil, nil, fmt.Errorf("failed to update tryout status: %w", err)
	}

	if sideEffects != nil {
		if err := sideEffects(tx, updated); err != nil {
			return nil, nil, err
		}
	}

	msg, err := insertChatMessage(ctx, tx, chatID, nil, nil, body, msgType, metadata)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return updated, msg, nil
}

// settleApplication closes out the originating application, if any, when
// the tryout resolves. Chats opened from approaches have none.
func (s *TryoutService) settleApplication(ctx context.Context, tx Querier, chat *models.TryoutChat, status, reason string) error {
	if chat.ApplicationID == nil {
		return nil
	}

	var rejectionReason *string
	if status == models.ApplicationRejected && reason != "" {
		rejectionReason = &reason
	}

	_, err := tx.Exec(ctx, `
		UPDATE team_applications
		SET status = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, status, rejectionReason, *chat.ApplicationID, models.ApplicationInTryout)
	if err != nil {
		return fmt.Errorf("failed to settle application: %w", err)
	}
	return nil
}

// announce pushes a lifecycle event to the chat room and both principals'
// user channels, after commit.
func (s *TryoutService) announce(eventType string, chat *models.TryoutChat, msg *models.Message, captainID uuid.UUID) {
	event := hub.Event{Type: eventType, ChatID: &chat.ID, Data: transitionEvent{Chat: chat, Message: msg}}
	s.hub.ToChat(chat.ID, event)
	s.hub.ToUser(chat.ApplicantID, event)
	if captainID != uuid.Nil {
		s.hub.ToUser(captainID, event)
	}
}

type pgxRow interface {
	Scan(dest ...any) error
}

func loadChat(ctx context.Context, q Querier, chatID uuid.UUID) (*models.TryoutChat, error) {
	return scanChat(q.QueryRow(ctx, `
		SELECT `+chatColumns+` FROM tryout_chats WHERE id = $1
	`, chatID))
}

func scanChat(row pgxRow) (*models.TryoutChat, error) {
	var chat models.TryoutChat
	err := row.Scan(
		&chat.ID, &chat.TeamID, &chat.ApplicantID, &chat.Origin,
		&chat.ApplicationID, &chat.ApproachID, &chat.Status,
		&chat.OfferMessage, &chat.OfferSenderID, &chat.OfferSentAt,
		&chat.EndedBy, &chat.EndReason, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func prefixedChatColumns(alias string) string {
	cols := strings.Split(chatColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
