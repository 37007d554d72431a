package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/teamscout/teamscout-api/internal/database"
	"github.com/teamscout/teamscout-api/internal/models"
)

const conversationSnapshotTTL = 24 * time.Hour

// SnapshotCache is the slice of the cache client the registry needs. Nil is
// allowed; the registry then simply has no stale fallback.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type DirectPeer struct {
	User          models.User `json:"user"`
	LastMessageAt *time.Time  `json:"last_message_at,omitempty"`
}

type TryoutSummary struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"team_id"`
	TeamName    string    `json:"team_name"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	Origin      string    `json:"origin"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ConversationList is what a user's chat sidebar renders: direct peers
// (system notifications first), then the tryout chats they participate in.
// Stale marks a snapshot served from cache because the database was
// unreachable.
type ConversationList struct {
	Peers   []DirectPeer    `json:"peers"`
	Tryouts []TryoutSummary `json:"tryouts"`
	Stale   bool            `json:"stale"`
}

// ConversationService is the read-side projection over messages,
// applications and tryout chats. It never mutates anything.
type ConversationService struct {
	db    *database.DB
	users *UserService
	cache SnapshotCache
}

func NewConversationService(db *database.DB, users *UserService, cache SnapshotCache) *ConversationService {
	return &ConversationService{db: db, users: users, cache: cache}
}

// ListConversations computes the user's conversation list. On a database
// failure it falls back to the last snapshot written to the cache and marks
// the result stale rather than failing the chat UI.
func (s *ConversationService) ListConversations(ctx context.Context, userID uuid.UUID) (*ConversationList, error) {
	list, err := s.compute(ctx, userID)
	if err != nil {
		if cached, ok := s.snapshot(ctx, userID); ok {
			cached.Stale = true
			return cached, nil
		}
		return nil, err
	}

	s.storeSnapshot(ctx, userID, list)
	return list, nil
}

func (s *ConversationService) compute(ctx context.Context, userID uuid.UUID) (*ConversationList, error) {
	peerIDs, lastSeen, err := s.directPeerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	appPeers, err := s.applicationPeerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range appPeers {
		if _, seen := lastSeen[id]; !seen && id != userID {
			peerIDs = append(peerIDs, id)
			lastSeen[id] = nil
		}
	}

	peers := []DirectPeer{{User: models.User{ID: models.SystemUserID, Name: "TeamScout"}}}
	if len(peerIDs) > 0 {
		users, err := s.users.GetByIDs(ctx, peerIDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		for _, id := range peerIDs {
			user, ok := byID[id]
			if !ok {
				continue
			}
			peers = append(peers, DirectPeer{User: user, LastMessageAt: lastSeen[id]})
		}
	}

	tryouts, err := s.tryoutSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ConversationList{Peers: peers, Tryouts: tryouts}, nil
}

// directPeerIDs returns distinct DM counterparts ordered by most recent
// message. The system sentinel (nil sender) is skipped here; it is always
// prepended as the first peer.
func (s *ConversationService) directPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, map[uuid.UUID]*time.Time, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT sender_id, receiver_id, created_at
		FROM messages
		WHERE chat_id IS NULL AND (sender_id = $1 OR receiver_id = $1)
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var order []uuid.UUID
	lastSeen := make(map[uuid.UUID]*time.Time)
	for rows.Next() {
		var senderID, receiverID *uuid.UUID
		var createdAt time.Time
		if err := rows.Scan(&senderID, &receiverID, &createdAt); err != nil {
			return nil, nil, err
		}
		if senderID == nil {
			continue
		}
		peer := *senderID
		if peer == userID {
			if receiverID == nil {
				continue
			}
			peer = *receiverID
		}
		if _, seen := lastSeen[peer]; !seen {
			order = append(order, peer)
			at := createdAt
			lastSeen[peer] = &at
		}
	}
	return order, lastSeen, rows.Err()
}

// applicationPeerIDs surfaces counterparts known only through application
// metadata: captains of teams the user applied to, and applicants to the
// user's team.
func (s *ConversationService) applicationPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.captain_id FROM team_applications a
		JOIN teams t ON a.team_id = t.id
		WHERE a.applicant_id = $1
		UNION
		SELECT a.applicant_id FROM team_applications a
		JOIN teams t ON a.team_id = t.id
		WHERE t.captain_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ConversationService) tryoutSummaries(ctx context.Context, userID uuid.UUID) ([]TryoutSummary, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT c.id, c.team_id, t.name, c.applicant_id, c.origin, c.status, c.updated_at
		FROM tryout_chats c
		JOIN teams t ON c.team_id = t.id
		WHERE c.applicant_id = $1
		   OR c.team_id IN (SELECT team_id FROM team_members WHERE user_id = $1)
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tryouts []TryoutSummary
	for rows.Next() {
		var t TryoutSummary
		if err := rows.Scan(&t.ID, &t.TeamID, &t.TeamName, &t.ApplicantID, &t.Origin, &t.Status, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tryouts = append(tryouts, t)
	}
	return tryouts, rows.Err()
}

func (s *ConversationService) snapshot(ctx context.Context, userID uuid.UUID) (*ConversationList, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, snapshotKey(userID))
	if err != nil || data == "" {
		return nil, false
	}
	var list ConversationList
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, false
	}
	return &list, true
}

func (s *ConversationService) storeSnapshot(ctx context.Context, userID uuid.UUID, list *ConversationList) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, snapshotKey(userID), string(data), conversationSnapshotTTL); err != nil {
		log.Printf("failed to cache conversation snapshot for %s: %v", userID, err)
	}
}

func snapshotKey(userID uuid.UUID) string {
	return "conversations:" + userID.String()
}
