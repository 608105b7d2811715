// Package pdurepo implements the admission-only uplink PDU slot
// repository: a single-producer, many-reader collection of PUSCH, PUCCH,
// and SRS descriptors bucketed by the OFDM symbol their allocation ends
// on, bound to the slot's FSM and resource grid.
package pdurepo

import (
	"fmt"

	"github.com/srsran/srsRAN-Project-sub026/phy/grid"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/ulfsm"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

// nofSymbolsPerSlot bounds the bucket array: one bucket per OFDM symbol.
const nofSymbolsPerSlot = 14

// SRSDescriptor is the reception context and estimator configuration for
// one UE's SRS transmission within the slot.
type SRSDescriptor struct {
	RNTI   uint16
	Config srs.ResourceConfiguration
}

func (d SRSDescriptor) endSymbol() int { return d.Config.EndSymbol() }

// Repository is the exclusive admission handle for one slot, created by
// starting the slot's FSM and released by FinishAddingPDUs.
type Repository struct {
	fsm *ulfsm.FSM

	puschBuckets   [nofSymbolsPerSlot][]pusch.PDU
	pucchBuckets   [nofSymbolsPerSlot][]pucch.PDU
	format1Batches [nofSymbolsPerSlot]*pucch.Format1BatchSet
	srsBuckets     [nofSymbolsPerSlot][]SRSDescriptor

	grid     grid.Reader
	pool     grid.Pool
	gridID   int
	released bool
	sharedGrid grid.SharedGrid
}

// NewRepository opens the admission window for systemSlot, transitioning
// the FSM idle -> accepting. Returns ok=false if the FSM was not idle.
func NewRepository(fsm *ulfsm.FSM, systemSlot int64, reader grid.Reader, pool grid.Pool, gridID int) (*Repository, bool) {
	if !fsm.StartNewSlot(systemSlot) {
		return nil, false
	}
	return &Repository{fsm: fsm, grid: reader, pool: pool, gridID: gridID}, true
}

func (r *Repository) checkBucket(endSymbol int) error {
	if endSymbol < 0 || endSymbol >= nofSymbolsPerSlot {
		return fmt.Errorf("pdurepo: end symbol %d out of range [0,%d)", endSymbol, nofSymbolsPerSlot)
	}
	return nil
}

// AddPUSCH admits a PUSCH PDU into the bucket for its end symbol.
func (r *Repository) AddPUSCH(pdu pusch.PDU) error {
	end := pdu.EndSymbol()
	if err := r.checkBucket(end); err != nil {
		return err
	}
	if !r.fsm.IncrementPendingPDU() {
		return fmt.Errorf("pdurepo: admission window closed")
	}
	r.puschBuckets[end] = append(r.puschBuckets[end], pdu)
	return nil
}

// AddPUCCH admits a PUCCH PDU. Format-1 PDUs are merged into an existing
// batch sharing the same common resource when one exists in this slot;
// each independent batch counts as one pending task, so a merge does not
// increment the FSM's pending-PDU counter a second time.
func (r *Repository) AddPUCCH(pdu pucch.PDU) error {
	end := pdu.EndSymbol()
	if err := r.checkBucket(end); err != nil {
		return err
	}

	if pdu.Format == pucch.Format1 {
		set := r.format1Batches[end]
		if set == nil {
			set = pucch.NewFormat1BatchSet()
			r.format1Batches[end] = set
		}
		before := set.Len()
		set.Add(pdu.Format1)
		if set.Len() != before {
			if !r.fsm.IncrementPendingPDU() {
				return fmt.Errorf("pdurepo: admission window closed")
			}
		}
		return nil
	}

	if !r.fsm.IncrementPendingPDU() {
		return fmt.Errorf("pdurepo: admission window closed")
	}
	r.pucchBuckets[end] = append(r.pucchBuckets[end], pdu)
	return nil
}

// AddSRS admits an SRS descriptor into the bucket for its end symbol.
func (r *Repository) AddSRS(desc SRSDescriptor) error {
	end := desc.endSymbol()
	if err := r.checkBucket(end); err != nil {
		return err
	}
	if !r.fsm.IncrementPendingPDU() {
		return fmt.Errorf("pdurepo: admission window closed")
	}
	r.srsBuckets[end] = append(r.srsBuckets[end], desc)
	return nil
}

// FinishAddingPDUs closes the admission window, binds the shared
// resource-grid reference counter to one, and returns the handle the
// caller and every subsequently dispatched task will share ownership of.
func (r *Repository) FinishAddingPDUs() (grid.SharedGrid, bool) {
	if r.released {
		return grid.SharedGrid{}, false
	}
	if !r.fsm.StopAcceptingPDU() {
		return grid.SharedGrid{}, false
	}
	r.released = true
	return grid.NewSharedGrid(r.gridID, r.grid, r.pool), true
}

// PUSCHAt returns the PUSCH PDUs whose allocation ends at the given
// symbol. Safe for concurrent readers once the repository is released.
func (r *Repository) PUSCHAt(symbol int) []pusch.PDU {
	if symbol < 0 || symbol >= nofSymbolsPerSlot {
		return nil
	}
	return r.puschBuckets[symbol]
}

// PUCCHAt returns the non-Format-1 PUCCH PDUs ending at the given symbol.
func (r *Repository) PUCCHAt(symbol int) []pucch.PDU {
	if symbol < 0 || symbol >= nofSymbolsPerSlot {
		return nil
	}
	return r.pucchBuckets[symbol]
}

// Format1BatchesAt returns the Format-1 batches ending at the given
// symbol, or nil if none were admitted.
func (r *Repository) Format1BatchesAt(symbol int) []*pucch.Format1Batch {
	if symbol < 0 || symbol >= nofSymbolsPerSlot {
		return nil
	}
	set := r.format1Batches[symbol]
	if set == nil {
		return nil
	}
	return set.Batches()
}

// SRSAt returns the SRS descriptors ending at the given symbol.
func (r *Repository) SRSAt(symbol int) []SRSDescriptor {
	if symbol < 0 || symbol >= nofSymbolsPerSlot {
		return nil
	}
	return r.srsBuckets[symbol]
}

// Buckets reports the number of OFDM symbols this repository indexes,
// exposed for tests asserting the 14-bucket invariant.
func Buckets() int { return nofSymbolsPerSlot }
