package hub

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event types pushed to connected clients. Live delivery is at-most-once;
// anything durable is recoverable from persisted history.
const (
	EventMessage          = "message"
	EventTyping           = "typing"
	EventTryoutStarted    = "tryoutStarted"
	EventTryoutEnded      = "tryoutEnded"
	EventOfferSent        = "teamOfferSent"
	EventOfferAccepted    = "teamOfferAccepted"
	EventOfferRejected    = "teamOfferRejected"
	EventTeamInvite       = "teamInvite"
	EventApplication      = "applicationReceived"
	EventTournamentInvite = "tournamentInvite"
)

type Event struct {
	Type   string      `json:"type"`
	ChatID *uuid.UUID  `json:"chat_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

type TypingData struct {
	ChatID uuid.UUID `json:"chat_id"`
	UserID uuid.UUID `json:"user_id"`
}

// Broadcaster is the hub surface the services publish through. Fan-out is
// fire-and-forget from the caller's perspective.
type Broadcaster interface {
	ToUser(userID uuid.UUID, event Event)
	ToChat(chatID uuid.UUID, event Event)
}

// Client is one connected transport session. Every client listens on its own
// user-id channel; Chats holds the rooms it joined while viewing tryout chats.
type Client struct {
	ID     string
	UserID uuid.UUID
	Chats  map[uuid.UUID]bool
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *envelope
	mu         sync.RWMutex
}

// envelope addresses an event to a user channel or a chat room.
type envelope struct {
	userID *uuid.UUID
	chatID *uuid.UUID
	event  Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *envelope, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.event)
			for _, client := range h.clients {
				if !h.addressed(client, msg) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) addressed(client *Client, msg *envelope) bool {
	if msg.userID != nil && client.UserID == *msg.userID {
		return true
	}
	if msg.chatID != nil && client.Chats[*msg.chatID] {
		return true
	}
	return false
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinChat subscribes a connected client to a chat room, entered when the
// client opens that tryout chat view.
func (h *Hub) JoinChat(clientID string, chatID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Chats[chatID] = true
	}
}

func (h *Hub) LeaveChat(clientID string, chatID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Chats, chatID)
	}
}

func (h *Hub) ToUser(userID uuid.UUID, event Event) {
	h.broadcast <- &envelope{userID: &userID, event: event}
}

func (h *Hub) ToChat(chatID uuid.UUID, event Event) {
	h.broadcast <- &envelope{chatID: &chatID, event: event}
}

// NotifyTyping fans a best-effort typing indicator out to a chat room.
// Nothing is persisted; clients debounce on their side.
func (h *Hub) NotifyTyping(chatID, userID uuid.UUID) {
	h.ToChat(chatID, Event{
		Type:   EventTyping,
		ChatID: &chatID,
		Data:   TypingData{ChatID: chatID, UserID: userID},
	})
}
