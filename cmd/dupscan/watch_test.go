package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDebouncerBatchesRapidAdds(t *testing.T) {
	var mu sync.Mutex
	var flushed []string
	done := make(chan struct{})

	d := newWatchDebouncer(20*time.Millisecond, func(paths []string) {
		mu.Lock()
		flushed = append(flushed, paths...)
		mu.Unlock()
		close(done)
	})

	d.add("a.go")
	d.add("b.go")
	d.add("a.go")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onFlush was never called")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, flushed)
}

func TestWatchDebouncerResetsTimerOnEachAdd(t *testing.T) {
	flushes := 0
	var mu sync.Mutex

	d := newWatchDebouncer(30*time.Millisecond, func(paths []string) {
		mu.Lock()
		flushes++
		mu.Unlock()
	})

	d.add("a.go")
	time.Sleep(15 * time.Millisecond)
	d.add("a.go") // resets the timer before it would have fired
	time.Sleep(15 * time.Millisecond)

	mu.Lock()
	got := flushes
	mu.Unlock()
	require.Equal(t, 0, got, "second add should have reset the debounce window")

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	got = flushes
	mu.Unlock()
	assert.Equal(t, 1, got)
}

func TestWatchDebouncerFlushWithNoPendingIsNoOp(t *testing.T) {
	called := false
	d := newWatchDebouncer(time.Millisecond, func(paths []string) { called = true })
	d.flush()
	assert.False(t, called)
}
