// Package csi implements the per-UE channel-state manager: aggregation of
// periodic CSI reports and SRS-derived TPMI recommendations into the state
// the scheduler consults when it picks a DL precoder or rank.
package csi

import (
	"math"
	"sync"

	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

// Report is a periodic CSI measurement reported by a UE over PUCCH or
// PUSCH: a rank indicator, an optional wideband CQI, and a PMI.
type Report struct {
	RI           int
	WidebandCQI  *int
	PMI          int
}

// snrEMAAlpha is the fast-start exponential moving average weight applied
// to every new PUSCH SNR sample.
const snrEMAAlpha = 0.5

// State is the aggregated channel knowledge this manager keeps for one UE.
type State struct {
	LatestReport Report

	PUSCHSNRdB    float64
	puschSNRValid bool

	RecommendedDLLayers int
	RecommendedPMI      map[int]int // keyed by layer count

	LastTPMI []pusch.LayerSelectInfo
}

// Manager tracks per-UE State, keyed by RNTI, and feeds the TPMI selector
// from SRS channel updates, mirroring ue_channel_state_manager.
type Manager struct {
	mu              sync.Mutex
	states          map[uint16]*State
	dlPortsByRNTI   map[uint16]int
	maxRank         int
	codebookSubset  pusch.CodebookSubset
}

// NewManager returns an empty manager. maxRank bounds the TPMI selector's
// search (get_recommended_pusch_tpmi's nof_layers <= max_nof_layers guard);
// subset is the codebook-subset restriction applied to every selection.
func NewManager(maxRank int, subset pusch.CodebookSubset) *Manager {
	return &Manager{
		states:         make(map[uint16]*State),
		dlPortsByRNTI:  make(map[uint16]int),
		maxRank:        maxRank,
		codebookSubset: subset,
	}
}

// ConfigureUE records the DL port count a UE was configured with, used to
// bound RI acceptance (recommended DL layers must never exceed it).
func (m *Manager) ConfigureUE(rnti uint16, dlPorts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dlPortsByRNTI[rnti] = dlPorts
	m.stateLocked(rnti)
}

func (m *Manager) stateLocked(rnti uint16) *State {
	s, ok := m.states[rnti]
	if !ok {
		s = &State{RecommendedPMI: make(map[int]int)}
		m.states[rnti] = s
	}
	return s
}

// HandleCSIReport adopts a new CSI report: the wideband CQI if present, the
// RI (rejected, leaving prior state untouched, if it exceeds the UE's
// configured DL port count), and the PMI into the per-layer-count table.
func (m *Manager) HandleCSIReport(rnti uint16, report Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stateLocked(rnti)

	if report.WidebandCQI != nil {
		cqi := *report.WidebandCQI
		s.LatestReport.WidebandCQI = &cqi
	}

	dlPorts := m.dlPortsByRNTI[rnti]
	if dlPorts == 0 || report.RI <= dlPorts {
		s.LatestReport.RI = report.RI
		s.RecommendedDLLayers = report.RI
	}

	s.LatestReport.PMI = report.PMI
	if s.RecommendedDLLayers > 0 {
		s.RecommendedPMI[s.RecommendedDLLayers] = report.PMI
	}
}

// UpdateSRSChannelMatrix feeds a fresh SRS channel estimate into the TPMI
// selector: the noise variance is approximated from the Frobenius norm of
// the channel (a noise floor 30dB below average receive power), and the
// selector's recommendation is stored as this UE's last TPMI selection.
func (m *Manager) UpdateSRSChannelMatrix(rnti uint16, channel srs.ChannelMatrix) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stateLocked(rnti)

	nofTx := channel.NofTxPorts()
	if nofTx == 0 {
		return
	}
	frobeniusSq := channel.FrobeniusNorm() * channel.FrobeniusNorm()
	noiseVariance := frobeniusSq / (1000 * float64(nofTx))

	s.LastTPMI = pusch.GetTPMISelectInfo(channel, noiseVariance, m.maxRank, m.codebookSubset)
}

// UpdatePUSCHSNR folds a new PUSCH SNR sample (dB) into this UE's
// fast-start exponential moving average.
func (m *Manager) UpdatePUSCHSNR(rnti uint16, snrDB float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stateLocked(rnti)

	if !s.puschSNRValid {
		s.PUSCHSNRdB = snrDB
		s.puschSNRValid = true
		return
	}
	s.PUSCHSNRdB = snrEMAAlpha*snrDB + (1-snrEMAAlpha)*s.PUSCHSNRdB
}

// RecommendedTPMI returns the last TPMI selection info computed for
// nofLayers layers, matching get_recommended_pusch_tpmi(nof_layers). The
// second return value is false if nofLayers exceeds the manager's
// configured max rank, or no selection has been computed yet.
func (m *Manager) RecommendedTPMI(rnti uint16, nofLayers int) (pusch.LayerSelectInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if nofLayers > m.maxRank {
		return pusch.LayerSelectInfo{}, false
	}
	s, ok := m.states[rnti]
	if !ok {
		return pusch.LayerSelectInfo{}, false
	}
	for _, info := range s.LastTPMI {
		if info.NofLayers == nofLayers {
			return info, true
		}
	}
	return pusch.LayerSelectInfo{}, false
}

// Snapshot returns a copy of a UE's aggregated state, for diagnostics and
// the scheduler's read path.
func (m *Manager) Snapshot(rnti uint16) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[rnti]
	if !ok {
		return State{}, false
	}
	cp := *s
	cp.RecommendedPMI = make(map[int]int, len(s.RecommendedPMI))
	for k, v := range s.RecommendedPMI {
		cp.RecommendedPMI[k] = v
	}
	cp.LastTPMI = append([]pusch.LayerSelectInfo(nil), s.LastTPMI...)
	return cp, true
}

// noiseFloorFromRSRP returns the noise floor 30dB below a linear RSRP
// (rsrpLinear / 1000), the same ratio UpdateSRSChannelMatrix applies to
// the channel's average receive power. Nothing in the module calls it.
func noiseFloorFromRSRP(rsrpLinear float64) float64 {
	return rsrpLinear * math.Pow(10, -3)
}
