// Package executor implements the non-blocking task dispatch capability
// the uplink pipeline uses to hand PDU processing off the real-time
// symbol-handling path: every submission either gets queued immediately or
// is rejected, and nothing here ever blocks the caller.
package executor

// Executor is implemented by anything that can run a task asynchronously
// without blocking the submitter, mirroring srsran::task_executor.
type Executor interface {
	// Execute submits task for dispatch as soon as a worker is free,
	// returning false without running task if the executor's queue is
	// full or it has been stopped.
	Execute(task func()) bool
	// Defer submits task with lower priority than Execute, for work that
	// may be delayed behind other queued tasks; returns false under the
	// same conditions as Execute.
	Defer(task func()) bool
}
