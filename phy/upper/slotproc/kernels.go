// Package slotproc implements the per-slot uplink orchestrator: the
// component that owns one slot's FSM, PDU repository, resource grid, and
// channel-kernel collaborators, and drives PRACH, PUSCH, PUCCH and SRS
// processing from admission through symbol-triggered dispatch to discard,
// ported from srsran::uplink_processor_impl.
package slotproc

import (
	"github.com/srsran/srsRAN-Project-sub026/phy/grid"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/notifier"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

// PRACHContext carries the reception context (slot, sector, occasion) a
// PRACH detection is associated with, passed through to the result.
type PRACHContext struct {
	SystemSlot int
	SectorID   int
}

// PRACHBuffer is the captured time-domain samples for one PRACH occasion.
type PRACHBuffer interface {
	// NofSamples reports the buffer's sample count, for validators.
	NofSamples() int
}

// PRACHDetector performs preamble detection against a captured PRACH
// occasion, mirroring srsran::prach_detector.
type PRACHDetector interface {
	IsValid(ctx PRACHContext) bool
	Detect(buf PRACHBuffer, ctx PRACHContext) notifier.PRACHResult
}

// RateMatchBuffer is a reserved soft-combining buffer for one HARQ
// process, mirroring srsran::unique_rx_buffer's payload.
type RateMatchBuffer interface {
	// Release returns the buffer to its pool; called once processing of
	// the owning PDU has finished (successfully or via discard).
	Release()
}

// RateMatchBufferPool reserves per-HARQ-process soft-buffers for PUSCH
// decoding, mirroring srsran::rx_buffer_pool.
type RateMatchBufferPool interface {
	// Reserve obtains the buffer for (slot, harqID), sized for nofCodeblocks
	// and reset if newData is set. ok is false if the pool is exhausted.
	Reserve(systemSlot int, harqID uint8, nofCodeblocks int, newData bool) (buf RateMatchBuffer, ok bool)
	// AdvanceSlot evicts buffers whose HARQ round has expired, called once
	// per slot at end_symbol_index == 0, mirroring the pool's slot turnover.
	AdvanceSlot(systemSlot int)
}

// PayloadPool reserves transport-block-sized byte spans for decoded PUSCH
// payloads, mirroring the upstream's span_based rx payload allocation.
type PayloadPool interface {
	// Reserve returns a byte span of exactly size bytes, or ok=false if
	// the pool has no space left.
	Reserve(size int) (payload []byte, ok bool)
}

// PUSCHProcessorNotifier is the two-stage callback a PUSCH kernel
// invocation reports through: the UCI-on-PUSCH portion first, then the
// shared-channel (transport block) portion.
type PUSCHProcessorNotifier interface {
	OnUCI(notifier.PUSCHControlResult)
	OnSCH(notifier.PUSCHDataResult)
}

// PUSCHProcessor decodes one PUSCH PDU against the resource grid,
// mirroring srsran::pusch_processor.
type PUSCHProcessor interface {
	IsValid(pdu pusch.PDU) bool
	// Process decodes pdu from reader into payload, reporting results via
	// notify. buf backs the soft-combining state across retransmissions.
	Process(notify PUSCHProcessorNotifier, payload []byte, buf RateMatchBuffer, reader grid.Reader, pdu pusch.PDU)
}

// PUCCHProcessor decodes PUCCH PDUs of every format, and Format-1 batches,
// mirroring srsran::pucch_processor's per-format overloads.
type PUCCHProcessor interface {
	IsValid(pdu pucch.PDU) bool
	// Process decodes a single-UE PUCCH PDU (Formats 0, 2, 3, 4).
	Process(reader grid.Reader, pdu pucch.PDU) notifier.PUCCHResult
	// ProcessFormat1Batch decodes every UE entry sharing one Format-1
	// resource in a single demodulation pass, returning one result per
	// entry in the same order as batch.Entries.
	ProcessFormat1Batch(reader grid.Reader, batch *pucch.Format1Batch) []notifier.PUCCHResult
}

// PHYTap is an optional observer handed the resource grid and the slot's
// admitted PDU lists ahead of dispatch, and the grid alone on quiet
// (PDU-less) slots, mirroring srsran::phy_rx_symbol_handler taps used for
// IQ capture / debugging.
type PHYTap interface {
	HandleULSymbol(reader grid.Reader, systemSlot, symbol int, puschPDUs []pusch.PDU, pucchPDUs []pucch.PDU, format1Batches []*pucch.Format1Batch, srsDescs []SRSDescriptor)
	HandleQuietGrid(reader grid.Reader, systemSlot int)
}

// SRSDescriptor mirrors pdurepo.SRSDescriptor without importing pdurepo,
// keeping the kernel-facing surface decoupled from the repository's
// internal bucket representation. HandleRxSymbol builds these from the
// repository's descriptors before handing them to the tap.
type SRSDescriptor struct {
	RNTI   uint16
	Config srs.ResourceConfiguration
}
