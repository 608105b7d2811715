package executor

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WorkerPool is a fixed-size pool of goroutines draining a bounded task
// queue, the concrete Executor this pipeline hands to every processing
// stage. Submission never blocks: a full queue is a rejection, not a
// backpressure signal, matching the upstream's fire-and-forget executors.
type WorkerPool struct {
	tasks    chan func()
	deferred chan func()
	group    errgroup.Group
	stopped  atomic.Bool
}

// NewWorkerPool starts nofWorkers goroutines pulling from a queue of
// capacity queueLen, with an equally sized deferred-priority queue drained
// only when the primary queue is empty.
func NewWorkerPool(nofWorkers, queueLen int) *WorkerPool {
	p := &WorkerPool{
		tasks:    make(chan func(), queueLen),
		deferred: make(chan func(), queueLen),
	}
	for i := 0; i < nofWorkers; i++ {
		p.group.Go(p.run)
	}
	return p
}

func (p *WorkerPool) run() error {
	// drain runs whatever is left in both queues once Stop has closed them.
	drain := func() error {
		for t := range p.tasks {
			t()
		}
		for t := range p.deferred {
			t()
		}
		return nil
	}
	for {
		select {
		case t, ok := <-p.tasks:
			if !ok {
				return drain()
			}
			t()
		default:
			select {
			case t, ok := <-p.tasks:
				if !ok {
					return drain()
				}
				t()
			case t, ok := <-p.deferred:
				if !ok {
					return drain()
				}
				t()
			}
		}
	}
}

// Execute implements Executor.
func (p *WorkerPool) Execute(task func()) bool {
	if p.stopped.Load() {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Defer implements Executor.
func (p *WorkerPool) Defer(task func()) bool {
	if p.stopped.Load() {
		return false
	}
	select {
	case p.deferred <- task:
		return true
	default:
		return false
	}
}

// Stop closes the queues and waits for every worker to drain outstanding
// tasks and exit. After Stop returns, Execute and Defer always return
// false.
func (p *WorkerPool) Stop() error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(p.tasks)
	close(p.deferred)
	return p.group.Wait()
}
