package demokernels

import (
	"sync"

	"github.com/srsran/srsRAN-Project-sub026/phy/grid"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/notifier"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/slotproc"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
)

// PUSCHProcessor is a synthetic PUSCH decoder: it reports a perfect
// transport-block decode with a zeroed payload of the PDU's configured
// size, and a valid UCI-on-PUSCH result when one is configured. It exists
// only to let cmd/gnbup exercise the slotproc dispatch, FSM accounting and
// notifier plumbing without the excluded LDPC/rate-dematch kernels.
type PUSCHProcessor struct{}

// IsValid implements slotproc.PUSCHProcessor.
func (PUSCHProcessor) IsValid(pdu pusch.PDU) bool {
	return pdu.Allocation.NofSymbols > 0 && pdu.Allocation.NofRB > 0
}

// Process implements slotproc.PUSCHProcessor.
func (PUSCHProcessor) Process(notify slotproc.PUSCHProcessorNotifier, payload []byte, buf slotproc.RateMatchBuffer, reader grid.Reader, pdu pusch.PDU) {
	if pdu.HasUCI() {
		notify.OnUCI(notifier.PUSCHControlResult{
			RNTI:   pdu.RNTI,
			HARQID: pdu.HARQID,
			Status: notifier.UCIStatusValid,
		})
	}
	notify.OnSCH(notifier.PUSCHDataResult{
		RNTI:      pdu.RNTI,
		HARQID:    pdu.HARQID,
		CRCPassed: true,
		Payload:   payload,
		SINRdB:    20,
	})
}

// PUCCHProcessor is a synthetic PUCCH decoder mirroring PUSCHProcessor's
// always-succeeds demo behaviour.
type PUCCHProcessor struct{}

// IsValid implements slotproc.PUCCHProcessor.
func (PUCCHProcessor) IsValid(pdu pucch.PDU) bool { return pdu.EndSymbol() >= 0 }

// Process implements slotproc.PUCCHProcessor.
func (PUCCHProcessor) Process(reader grid.Reader, pdu pucch.PDU) notifier.PUCCHResult {
	return notifier.PUCCHResult{RNTI: pdu.RNTI(), Status: notifier.UCIStatusValid}
}

// ProcessFormat1Batch implements slotproc.PUCCHProcessor.
func (PUCCHProcessor) ProcessFormat1Batch(reader grid.Reader, batch *pucch.Format1Batch) []notifier.PUCCHResult {
	out := make([]notifier.PUCCHResult, len(batch.Entries))
	for i, e := range batch.Entries {
		out[i] = notifier.PUCCHResult{RNTI: e.RNTI, Status: notifier.UCIStatusValid}
	}
	return out
}

// PRACHDetector is a synthetic PRACH detector that always reports
// preamble 0 detected, for cmd/gnbup's synthetic traffic generator.
type PRACHDetector struct{}

// IsValid implements slotproc.PRACHDetector.
func (PRACHDetector) IsValid(ctx slotproc.PRACHContext) bool { return true }

// Detect implements slotproc.PRACHDetector.
func (PRACHDetector) Detect(buf slotproc.PRACHBuffer, ctx slotproc.PRACHContext) notifier.PRACHResult {
	return notifier.PRACHResult{
		SlotSystemSlot: ctx.SystemSlot,
		Detected:       true,
		Preambles:      []notifier.PRACHPreamble{{Index: 0, TimeAdvanceNs: 0, SNRdB: 15}},
	}
}

// PRACHBuffer is a synthetic captured PRACH occasion.
type PRACHBuffer struct{ Samples int }

// NofSamples implements slotproc.PRACHBuffer.
func (b PRACHBuffer) NofSamples() int { return b.Samples }

// RateMatchBuffer is a no-op soft-buffer handle for the demo rate-match
// pool below.
type RateMatchBuffer struct{ release func() }

// Release implements slotproc.RateMatchBuffer.
func (b RateMatchBuffer) Release() {
	if b.release != nil {
		b.release()
	}
}

// RateMatchBufferPool is a fixed-capacity demo rate-matching buffer pool,
// single-consumer per HARQ id per slot.
type RateMatchBufferPool struct {
	mu        sync.Mutex
	capacity  int
	reserved  map[uint8]bool
}

// NewRateMatchBufferPool returns a pool admitting up to capacity
// concurrently-reserved HARQ buffers.
func NewRateMatchBufferPool(capacity int) *RateMatchBufferPool {
	return &RateMatchBufferPool{capacity: capacity, reserved: make(map[uint8]bool)}
}

// Reserve implements slotproc.RateMatchBufferPool.
func (p *RateMatchBufferPool) Reserve(systemSlot int, harqID uint8, nofCodeblocks int, newData bool) (slotproc.RateMatchBuffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.reserved) >= p.capacity && !p.reserved[harqID] {
		return nil, false
	}
	p.reserved[harqID] = true
	return RateMatchBuffer{release: func() {
		p.mu.Lock()
		delete(p.reserved, harqID)
		p.mu.Unlock()
	}}, true
}

// AdvanceSlot implements slotproc.RateMatchBufferPool. The demo pool keeps
// no cross-slot HARQ state, so turnover is a no-op.
func (p *RateMatchBufferPool) AdvanceSlot(systemSlot int) {}

// PayloadPool is a fixed-capacity demo payload-span allocator, reclaimed
// wholesale between demo slots by Reset (a real pool would instead track
// per-span lifetime; this demo has no consumer that retains payloads past
// notification).
type PayloadPool struct {
	mu        sync.Mutex
	capacity  int
	remaining int
}

// NewPayloadPool returns a pool with totalBytes of capacity.
func NewPayloadPool(totalBytes int) *PayloadPool {
	return &PayloadPool{capacity: totalBytes, remaining: totalBytes}
}

// Reset reclaims all outstanding capacity.
func (p *PayloadPool) Reset() {
	p.mu.Lock()
	p.remaining = p.capacity
	p.mu.Unlock()
}

// Reserve implements slotproc.PayloadPool.
func (p *PayloadPool) Reserve(size int) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if size > p.remaining {
		return nil, false
	}
	p.remaining -= size
	return make([]byte, size), true
}
