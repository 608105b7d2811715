package executor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/phy/executor"
)

func TestWorkerPoolExecutesSubmittedTasks(t *testing.T) {
	pool := executor.NewWorkerPool(2, 8)
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		require.True(t, pool.Execute(func() { wg.Done() }))
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not complete in time")
	}
}

func TestWorkerPoolRejectsAfterStop(t *testing.T) {
	pool := executor.NewWorkerPool(1, 2)
	require.NoError(t, pool.Stop())
	require.False(t, pool.Execute(func() {}))
	require.False(t, pool.Defer(func() {}))
}

func TestWorkerPoolRejectsWhenQueueFull(t *testing.T) {
	pool := executor.NewWorkerPool(1, 1)
	defer pool.Stop()

	block := make(chan struct{})
	require.True(t, pool.Execute(func() { <-block }))

	// Fill the one-slot queue, then expect the next submission to reject.
	accepted := 0
	rejected := 0
	for i := 0; i < 4; i++ {
		if pool.Execute(func() {}) {
			accepted++
		} else {
			rejected++
		}
	}
	close(block)
	require.Greater(t, rejected, 0)
}
