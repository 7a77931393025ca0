package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockForReturnsStableMutex(t *testing.T) {
	s := NewProfileStore(nil)

	first := s.lockFor("u1")
	assert.Same(t, first, s.lockFor("u1"))
	assert.NotSame(t, first, s.lockFor("u2"))
}

func TestWithLockSerializesPerUser(t *testing.T) {
	s := NewProfileStore(nil)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock("u1", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
