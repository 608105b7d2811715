// Package notifier defines the callback surface the per-slot orchestrator
// uses to hand finished reception results back to the layer above, and the
// discarded-result constructors used when a PDU could not be processed.
package notifier

import (
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

// UCIStatus reports whether a decoded UCI payload should be trusted.
type UCIStatus int

const (
	UCIStatusUnknown UCIStatus = iota
	UCIStatusValid
	UCIStatusInvalid
)

// PRACHResult carries a completed PRACH detection outcome.
type PRACHResult struct {
	SlotSystemSlot int
	Detected       bool
	Preambles      []PRACHPreamble
}

// PRACHPreamble is one detected preamble within a PRACH occasion.
type PRACHPreamble struct {
	Index         int
	TimeAdvanceNs float64
	SNRdB         float64
}

// PUSCHControlResult carries the decoded UCI-on-PUSCH portion of a PUSCH
// reception, delivered separately from (and ahead of) the data portion.
type PUSCHControlResult struct {
	RNTI   uint16
	HARQID uint8
	Status UCIStatus
	Payload []byte
}

// PUSCHDataResult carries the decoded transport block of a PUSCH
// reception.
type PUSCHDataResult struct {
	RNTI       uint16
	HARQID     uint8
	CRCPassed  bool
	Payload    []byte
	EVM        float64
	SINRdB     float64
}

// PUCCHResult carries a decoded PUCCH reception, independent of format.
type PUCCHResult struct {
	RNTI    uint16
	Status  UCIStatus
	Payload []byte
	SRDetected bool
}

// SRSResult carries a completed SRS channel estimate.
type SRSResult struct {
	RNTI   uint16
	Result srs.EstimatorResult
}

// RxResultsNotifier is implemented by the layer above the per-slot
// orchestrator to receive completed reception results, mirroring
// srsran::upper_phy_rx_results_notifier.
type RxResultsNotifier interface {
	OnNewPRACHResults(result PRACHResult)
	OnNewPUSCHResultsControl(result PUSCHControlResult)
	OnNewPUSCHResultsData(result PUSCHDataResult)
	OnNewPUCCHResults(result PUCCHResult)
	OnNewSRSResults(result SRSResult)
}

// DiscardedPUSCHControl builds the sentinel result reported when a PUSCH
// PDU's UCI portion could not be processed (e.g. the slot was discarded),
// mirroring the upstream's discard path: UCI status unknown, no payload.
func DiscardedPUSCHControl(pdu pusch.PDU) PUSCHControlResult {
	return PUSCHControlResult{RNTI: pdu.RNTI, HARQID: pdu.HARQID, Status: UCIStatusUnknown}
}

// DiscardedPUSCHData builds the sentinel result reported when a PUSCH PDU
// could not be decoded: CRC failed, empty payload.
func DiscardedPUSCHData(pdu pusch.PDU) PUSCHDataResult {
	return PUSCHDataResult{RNTI: pdu.RNTI, HARQID: pdu.HARQID, CRCPassed: false}
}

// DiscardedPUCCH builds the sentinel result reported when a PUCCH PDU
// could not be processed.
func DiscardedPUCCH(p pucch.PDU) PUCCHResult {
	return PUCCHResult{RNTI: p.RNTI(), Status: UCIStatusUnknown}
}
