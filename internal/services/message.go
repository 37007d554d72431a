package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/hub"
	"github.com/teamscout/teamscout-api/internal/models"
)

var (
	ErrChatClosed       = errors.New("chat is in a terminal state")
	ErrEmptyMessage     = errors.New("message body is required")
	ErrReceiverNotFound = errors.New("receiver not found")
)

const messageColumns = `id, chat_id, sender_id, receiver_id, client_key, seq, body, type, metadata, created_at`

// MessageService owns the append-only message store and its delivery path.
// Persistence always completes before fan-out, so subscribers never observe
// a message that was not durably stored.
type MessageService struct {
	db    *database.DB
	hub   hub.Broadcaster
	locks *ChatLocks
}

func NewMessageService(db *database.DB, broadcaster hub.Broadcaster, locks *ChatLocks) *MessageService {
	return &MessageService{db: db, hub: broadcaster, locks: locks}
}

// SendDirect persists a text message between two users and publishes it to
// both user channels. The returned message carries the server-assigned id,
// sequence and timestamp; clientKey is echoed back untouched so the sender
// can reconcile its optimistic copy by exact key match.
func (s *MessageService) SendDirect(ctx context.Context, senderID, receiverID uuid.UUID, body string, clientKey *uuid.UUID) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
	`, receiverID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check receiver: %w", err)
	}
	if !exists {
		return nil, ErrReceiverNotFound
	}

	unlock := s.locks.Lock(directKey(senderID, receiverID))
	defer unlock()

	var msg models.Message
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, client_key, seq, body, type)
		SELECT $1, $2, $3, COALESCE(MAX(seq), 0) + 1, $4, $5
		FROM messages
		WHERE chat_id IS NULL
		  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		RETURNING `+messageColumns,
		senderID, receiverID, clientKey, body, models.MessageText,
	).Scan(
		&msg.ID, &msg.ChatID, &msg.SenderID, &msg.ReceiverID, &msg.ClientKey,
		&msg.Seq, &msg.Body, &msg.Type, &msg.Metadata, &msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to persist direct message: %w", err)
	}

	event := hub.Event{Type: hub.EventMessage, Data: msg}
	s.hub.ToUser(receiverID, event)
	s.hub.ToUser(senderID, event)

	return &msg, nil
}

// SendGroup persists a text message into a tryout chat and publishes it to
// the chat room. Fails with ErrChatClosed once the chat entered a terminal
// state and ErrNotAuthorized when the sender is not a participant.
func (s *MessageService) SendGroup(ctx context.Context, chatID, senderID uuid.UUID, body string, clientKey *uuid.UUID) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	// The chat lock serializes sends against each other and against
	// lifecycle transitions, so the status observed here holds until the
	// insert commits.
	unlock := s.locks.Lock(chatKey(chatID))
	defer unlock()

	chat, err := loadChat(ctx, s.db.Pool, chatID)
	if err != nil {
		return nil, err
	}

	participant, err := s.isParticipant(ctx, chat, senderID)
	if err != nil {
		return nil, err
	}
	if !participant {
		return nil, ErrNotAuthorized
	}

	if models.IsTerminalTryoutStatus(chat.Status) {
		return nil, ErrChatClosed
	}

	msg, err := insertChatMessage(ctx, s.db.Pool, chatID, &senderID, clientKey, body, models.MessageText, nil)
	if err != nil {
		return nil, err
	}

	s.hub.ToChat(chatID, hub.Event{Type: hub.EventMessage, ChatID: &chatID, Data: msg})

	return msg, nil
}

// SendSystemDirect appends a server-generated message to a user's system
// conversation (invitation created, tournament invite) and pushes it to the
// user channel.
func (s *MessageService) SendSystemDirect(ctx context.Context, receiverID uuid.UUID, body, msgType string, metadata json.RawMessage) (*models.Message, error) {
	unlock := s.locks.Lock(directKey(models.SystemUserID, receiverID))
	defer unlock()

	var msg models.Message
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (receiver_id, seq, body, type, metadata)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4
		FROM messages
		WHERE chat_id IS NULL AND sender_id IS NULL AND receiver_id = $1
		RETURNING `+messageColumns,
		receiverID, body, msgType, metadata,
	).Scan(
		&msg.ID, &msg.ChatID, &msg.SenderID, &msg.ReceiverID, &msg.ClientKey,
		&msg.Seq, &msg.Body, &msg.Type, &msg.Metadata, &msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to persist system message: %w", err)
	}

	s.hub.ToUser(receiverID, hub.Event{Type: hub.EventMessage, Data: msg})

	return &msg, nil
}

// ChatHistory returns a chat's messages in persistence order. Only
// participants may read it.
func (s *MessageService) ChatHistory(ctx context.Context, chatID, userID uuid.UUID) ([]models.Message, error) {
	chat, err := loadChat(ctx, s.db.Pool, chatID)
	if err != nil {
		return nil, err
	}

	participant, err := s.isParticipant(ctx, chat, userID)
	if err != nil {
		return nil, err
	}
	if !participant {
		return nil, ErrNotAuthorized
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages WHERE chat_id = $1
		ORDER BY seq
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// DirectHistory returns the conversation between userID and peerID in
// persistence order. The zero peer id selects the system conversation.
func (s *MessageService) DirectHistory(ctx context.Context, userID, peerID uuid.UUID) ([]models.Message, error) {
	var (
		rows pgxRows
		err  error
	)
	if peerID == models.SystemUserID {
		rows, err = s.db.Pool.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE chat_id IS NULL AND sender_id IS NULL AND receiver_id = $1
			ORDER BY seq
		`, userID)
	} else {
		rows, err = s.db.Pool.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE chat_id IS NULL
			  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
			ORDER BY seq
		`, userID, peerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *MessageService) isParticipant(ctx context.Context, chat *models.TryoutChat, userID uuid.UUID) (bool, error) {
	if userID == chat.ApplicantID {
		return true, nil
	}
	var member bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, chat.TeamID, userID).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return member, nil
}

// insertChatMessage appends one message to a chat with the next sequence
// number. Callers must hold the chat lock; the state machine calls it inside
// its transactions so system messages commit atomically with the transition.
func insertChatMessage(ctx context.Context, q Querier, chatID uuid.UUID, senderID, clientKey *uuid.UUID, body, msgType string, metadata json.RawMessage) (*models.Message, error) {
	var msg models.Message
	err := q.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, client_key, seq, body, type, metadata)
		SELECT $1, $2, $3, COALESCE(MAX(seq), 0) + 1, $4, $5, $6
		FROM messages WHERE chat_id = $1
		RETURNING `+messageColumns,
		chatID, senderID, clientKey, body, msgType, metadata,
	).Scan(
		&msg.ID, &msg.ChatID, &msg.SenderID, &msg.ReceiverID, &msg.ClientKey,
		&msg.Seq, &msg.Body, &msg.Type, &msg.Metadata, &msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to persist chat message: %w", err)
	}
	return &msg, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

func scanMessages(rows pgxRows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID, &msg.ChatID, &msg.SenderID, &msg.ReceiverID, &msg.ClientKey,
			&msg.Seq, &msg.Body, &msg.Type, &msg.Metadata, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
