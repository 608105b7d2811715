// Package procpool implements the numerology-indexed uplink processor
// pool: a fixed-size array of slot-processor vectors, a per-numerology
// round-robin admission assignment, and a circular recent-assignment memo
// so that handle_rx_symbol on the receive-symbol path always finds the
// same processor that admitted the slot, mirroring
// srsran::uplink_processor_pool_impl.
package procpool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/srsran/srsRAN-Project-sub026/phy/grid"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/slotproc"
	"github.com/srsran/srsRAN-Project-sub026/slot"
)

// nofNumerologies bounds the per-numerology processor table, covering
// slot_point's full numerology range {0..4}.
const nofNumerologies = 5

// assignmentMemoSize is the circular buffer depth indexed by
// system_slot % assignmentMemoSize, matching the upstream's fixed 16-entry
// recent-assignment table.
const assignmentMemoSize = 16

// Pool holds, per numerology, a vector of slot processors assigned to
// incoming slots round-robin, plus a circular memo recalling which
// processor admitted each of the last 16 slots.
type Pool struct {
	processors [nofNumerologies][]*slotproc.Processor
	nextIdx    [nofNumerologies]atomic.Uint32

	mu           sync.Mutex
	assigned     [assignmentMemoSize]*slotproc.Processor
	assignedSlot [assignmentMemoSize]int

	// defaultProcessor services PRACH and receive symbols when no
	// assignment exists for a slot (e.g. DL-only slots with no admitted
	// uplink PDUs ever requested a repository).
	defaultProcessor *slotproc.Processor
}

// New builds a pool from a per-numerology slice of processors. The first
// processor of numerology 0 (falling back to the first populated
// numerology) becomes the default processor for unassigned slots.
func New(processors [nofNumerologies][]*slotproc.Processor) *Pool {
	p := &Pool{processors: processors}
	for mu := 0; mu < nofNumerologies; mu++ {
		if len(processors[mu]) > 0 {
			p.defaultProcessor = processors[mu][0]
			break
		}
	}
	for i := range p.assignedSlot {
		p.assignedSlot[i] = -1
	}
	return p
}

func memoIndex(systemSlot int) int {
	idx := systemSlot % assignmentMemoSize
	if idx < 0 {
		idx += assignmentMemoSize
	}
	return idx
}

// GetProcessor assigns the next processor in the numerology's round-robin
// rotation to sp, recording the assignment in the circular memo, and
// returns it. Returns an error if no processors are configured for sp's
// numerology.
func (p *Pool) GetProcessor(sp slot.Point) (*slotproc.Processor, error) {
	mu := sp.Numerology()
	if int(mu) >= nofNumerologies || len(p.processors[mu]) == 0 {
		return nil, fmt.Errorf("procpool: no processors configured for numerology %d", mu)
	}

	procs := p.processors[mu]
	idx := p.nextIdx[mu].Add(1) - 1
	proc := procs[int(idx)%len(procs)]

	p.mu.Lock()
	i := memoIndex(sp.SystemSlot())
	p.assigned[i] = proc
	p.assignedSlot[i] = sp.SystemSlot()
	p.mu.Unlock()

	return proc, nil
}

// RecentAssignment returns the processor most recently assigned to sp via
// GetProcessor, falling back to the default processor if the memo slot has
// since been overwritten by a different slot or was never assigned (e.g. a
// DL-only slot that never called GetPDURepository).
func (p *Pool) RecentAssignment(sp slot.Point) *slotproc.Processor {
	p.mu.Lock()
	i := memoIndex(sp.SystemSlot())
	proc, matched := p.assigned[i], p.assignedSlot[i] == sp.SystemSlot()
	p.mu.Unlock()

	if matched && proc != nil {
		return proc
	}
	return p.defaultProcessor
}

// GetPDURepository resolves the processor for sp via GetProcessor and
// opens its admission window, exposing the pool-level view FAPI calls
// uplink_pdu_slot_repository_pool::get_pdu_slot_repository through.
func (p *Pool) GetPDURepository(sp slot.Point, reader grid.Reader, gridPool grid.Pool, gridID int) (*slotproc.RepositoryHandle, error) {
	proc, err := p.GetProcessor(sp)
	if err != nil {
		return nil, err
	}
	h, ok := proc.GetPDURepository(sp, reader, gridPool, gridID)
	if !ok {
		return nil, fmt.Errorf("procpool: slot %s repository unavailable (busy or late)", sp)
	}
	return h, nil
}

// SlotProcessorView is the reduced surface exposed to the radio-unit-facing
// collaborator: symbol dispatch, PRACH, and discard, resolved for sp
// through the recent-assignment memo.
type SlotProcessorView struct {
	pool *Pool
	slot slot.Point
}

// GetSlotProcessor resolves the view for sp, mirroring
// uplink_slot_processor_pool::get_slot_processor.
func (p *Pool) GetSlotProcessor(sp slot.Point) SlotProcessorView {
	return SlotProcessorView{pool: p, slot: sp}
}

// HandleRxSymbol forwards to the processor assigned to this view's slot.
func (v SlotProcessorView) HandleRxSymbol(endSymbolIndex int, valid bool) {
	if proc := v.pool.RecentAssignment(v.slot); proc != nil {
		proc.HandleRxSymbol(endSymbolIndex, valid)
	}
}

// ProcessPRACH forwards to the processor assigned to this view's slot.
func (v SlotProcessorView) ProcessPRACH(buf slotproc.PRACHBuffer, ctx slotproc.PRACHContext) {
	if proc := v.pool.RecentAssignment(v.slot); proc != nil {
		proc.ProcessPRACH(buf, ctx)
	}
}

// DiscardSlot forwards to the processor assigned to this view's slot.
func (v SlotProcessorView) DiscardSlot() {
	if proc := v.pool.RecentAssignment(v.slot); proc != nil {
		proc.DiscardSlot()
	}
}
