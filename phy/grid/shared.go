package grid

import "sync/atomic"

// Pool is the backing store a SharedGrid releases itself back to once its
// last reference is dropped, mirroring
// srsran::shared_resource_grid::pool_interface.
type Pool interface {
	// Release returns grid identified by id to the pool for reuse.
	Release(id int)
}

// state is the shared reference-counted payload behind every SharedGrid
// handle copied from the same origin.
type state struct {
	id    int
	pool  Pool
	grid  Reader
	count atomic.Int32
}

// SharedGrid is a cheaply-copyable handle to a resource grid, refcounted so
// that the admission-window repository and every in-flight per-PDU task
// can hold an independent reference; the grid returns to its pool only
// once the last copy is released. Mirrors srsran::shared_resource_grid.
type SharedGrid struct {
	s *state
}

// NewSharedGrid wraps grid with an initial reference count of one, to be
// returned to pool via id when the last reference is released.
func NewSharedGrid(id int, grid Reader, pool Pool) SharedGrid {
	s := &state{id: id, pool: pool, grid: grid}
	s.count.Store(1)
	return SharedGrid{s: s}
}

// Valid reports whether this handle still refers to a live grid (a
// zero-value SharedGrid, or one whose references have all been released,
// is not valid).
func (g SharedGrid) Valid() bool {
	return g.s != nil && g.s.count.Load() > 0
}

// Reader returns the read capability of the underlying grid. Calling this
// on an invalid handle panics, matching the upstream's precondition that
// callers never dereference a released grid.
func (g SharedGrid) Reader() Reader {
	if !g.Valid() {
		panic("grid: Reader called on released SharedGrid")
	}
	return g.s.grid
}

// Copy takes out a new reference to the same underlying grid, returning a
// new handle that must itself be released independently.
func (g SharedGrid) Copy() SharedGrid {
	if g.s == nil {
		return SharedGrid{}
	}
	g.s.count.Add(1)
	return SharedGrid{s: g.s}
}

// Release drops this handle's reference. Once the last outstanding
// reference is released, the grid is returned to its pool. Release is
// idempotent-unsafe by design (as in the upstream): callers must release
// each handle exactly once.
func (g SharedGrid) Release() {
	if g.s == nil {
		return
	}
	if g.s.count.Add(-1) == 0 {
		g.s.pool.Release(g.s.id)
	}
}

// RefCount reports the number of outstanding references, exposed for
// tests and diagnostics.
func (g SharedGrid) RefCount() int32 {
	if g.s == nil {
		return 0
	}
	return g.s.count.Load()
}
