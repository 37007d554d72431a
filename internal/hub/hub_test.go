package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.broadcast)
}

func TestHub_RegisterClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)

	// Wait for registration to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.clients[client.ID]
	hub.mu.RUnlock()

	assert.True(t, exists)
}

func TestHub_UnregisterClient_ClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.clients[client.ID]
	hub.mu.RUnlock()
	assert.False(t, exists)

	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_JoinChat(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}
	chatID := uuid.New()

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.JoinChat(client.ID, chatID)

	hub.mu.RLock()
	joined := client.Chats[chatID]
	hub.mu.RUnlock()

	assert.True(t, joined)
}

func TestHub_LeaveChat(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	chatID := uuid.New()
	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  map[uuid.UUID]bool{chatID: true},
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.LeaveChat(client.ID, chatID)

	hub.mu.RLock()
	joined := client.Chats[chatID]
	hub.mu.RUnlock()

	assert.False(t, joined)
}

func TestHub_ToUser_DeliversToMatchingClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := &Client{
		ID:     "client-1",
		UserID: userID,
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}
	other := &Client{
		ID:     "client-2",
		UserID: uuid.New(),
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	hub.Register(other)
	time.Sleep(10 * time.Millisecond)

	hub.ToUser(userID, Event{Type: EventMessage, Data: map[string]string{"body": "hi"}})

	select {
	case msg := <-client.Send:
		var event Event
		err := json.Unmarshal(msg, &event)
		require.NoError(t, err)
		assert.Equal(t, EventMessage, event.Type)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("did not receive message")
	}

	select {
	case <-other.Send:
		t.Fatal("should not have received message")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestHub_ToChat_DeliversToJoinedClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	chatID := uuid.New()

	client1 := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  map[uuid.UUID]bool{chatID: true},
		Send:   make(chan []byte, 256),
	}
	client2 := &Client{
		ID:     "client-2",
		UserID: uuid.New(),
		Chats:  map[uuid.UUID]bool{chatID: true},
		Send:   make(chan []byte, 256),
	}
	client3 := &Client{
		ID:     "client-3",
		UserID: uuid.New(),
		Chats:  map[uuid.UUID]bool{uuid.New(): true}, // Different chat
		Send:   make(chan []byte, 256),
	}

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)
	time.Sleep(10 * time.Millisecond)

	hub.ToChat(chatID, Event{Type: EventTryoutEnded, ChatID: &chatID})

	receivedCount := 0

	select {
	case <-client1.Send:
		receivedCount++
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-client2.Send:
		receivedCount++
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-client3.Send:
		t.Fatal("client3 should not receive message")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 2, receivedCount)
}

func TestHub_ToChat_FullBufferDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	chatID := uuid.New()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  map[uuid.UUID]bool{chatID: true},
		Send:   make(chan []byte, 1), // Very small buffer
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	// Fill the buffer
	client.Send <- []byte("fill")

	// This should not panic - message should be dropped
	hub.ToChat(chatID, Event{Type: EventMessage})
	time.Sleep(10 * time.Millisecond)

	// Drain the buffer
	<-client.Send

	select {
	case <-client.Send:
		t.Fatal("should not receive dropped message")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}

func TestHub_NotifyTyping(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	chatID := uuid.New()
	typistID := uuid.New()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Chats:  map[uuid.UUID]bool{chatID: true},
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.NotifyTyping(chatID, typistID)

	select {
	case msg := <-client.Send:
		var event Event
		err := json.Unmarshal(msg, &event)
		require.NoError(t, err)

		assert.Equal(t, EventTyping, event.Type)

		dataBytes, _ := json.Marshal(event.Data)
		var data TypingData
		err = json.Unmarshal(dataBytes, &data)
		require.NoError(t, err)

		assert.Equal(t, chatID, data.ChatID)
		assert.Equal(t, typistID, data.UserID)

	case <-time.After(100 * time.Millisecond):
		t.Fatal("did not receive typing event")
	}
}

func TestHub_JoinChat_NonexistentClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	time.Sleep(10 * time.Millisecond)

	// Should not panic when client doesn't exist
	hub.JoinChat("nonexistent", uuid.New())
	hub.LeaveChat("nonexistent", uuid.New())
}

func TestHub_UnregisterNonexistentClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "nonexistent",
		UserID: uuid.New(),
		Chats:  make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}

	// Should not panic
	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)
}
