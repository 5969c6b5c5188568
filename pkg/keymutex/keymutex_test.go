package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialisesSameKey(t *testing.T) {
	km := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(42)
			defer km.Unlock(42)
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	km := New()

	km.Lock(1)
	done := make(chan struct{})
	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()
	<-done
	km.Unlock(1)
}

func TestEntriesAreReleased(t *testing.T) {
	km := New()
	km.Lock(7)
	km.Unlock(7)
	require.Empty(t, km.locks)
}

func TestUnlockUnheldPanics(t *testing.T) {
	km := New()
	require.Panics(t, func() { km.Unlock(99) })
}
