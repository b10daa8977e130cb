package health

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadinessFlag(t *testing.T) {
	h := NewHealthHandler(nil)
	assert.False(t, h.isReady.Load())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.SetReady()
		}()
	}
	// Concurrent reads alongside the writers, for the race detector.
	readers := make(chan struct{})
	go func() {
		defer close(readers)
		for i := 0; i < 1000; i++ {
			_ = h.isReady.Load()
		}
	}()
	wg.Wait()
	<-readers

	assert.True(t, h.isReady.Load())
}
