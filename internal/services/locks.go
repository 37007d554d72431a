package services

import (
	"sync"

	"github.com/google/uuid"
)

// ChatLocks serializes writes per conversation so message order is
// deterministic: one logical writer per tryout chat or direct pair, fully
// parallel across conversations. The message store and the tryout state
// machine share one instance so lifecycle system messages order correctly
// against in-flight sends on the same chat.
type ChatLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewChatLocks() *ChatLocks {
	return &ChatLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (c *ChatLocks) Lock(key string) func() {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func chatKey(chatID uuid.UUID) string {
	return "chat:" + chatID.String()
}

// directKey is order-independent so both directions of a DM pair serialize
// on the same lock.
func directKey(a, b uuid.UUID) string {
	if b.String() < a.String() {
		a, b = b, a
	}
	return "direct:" + a.String() + ":" + b.String()
}
