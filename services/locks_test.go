package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	locks := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("session-1")
			defer locks.Unlock("session-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	locks := NewKeyedMutex()

	locks.Lock("a")
	// A second key must not block behind the first.
	done := make(chan struct{})
	go func() {
		locks.Lock("b")
		locks.Unlock("b")
		close(done)
	}()
	<-done
	locks.Unlock("a")
}

func TestKeyedMutex_EntryReleasedAtZeroRefs(t *testing.T) {
	locks := NewKeyedMutex()

	locks.Lock("ephemeral")
	locks.Unlock("ephemeral")

	assert.Zero(t, locks.Len())
}
