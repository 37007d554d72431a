package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatLocks_SerializesSameKey(t *testing.T) {
	locks := NewChatLocks()
	key := chatKey(uuid.New())

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestChatLocks_IndependentKeys(t *testing.T) {
	locks := NewChatLocks()

	unlockA := locks.Lock(chatKey(uuid.New()))
	defer unlockA()

	// A held lock on one chat must not block another chat.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(chatKey(uuid.New()))
		unlockB()
		close(done)
	}()

	<-done
}

func TestDirectKey_OrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, directKey(a, b), directKey(b, a))
	assert.NotEqual(t, directKey(a, b), directKey(a, uuid.New()))
}
