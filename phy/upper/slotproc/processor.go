package slotproc

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srsran/srsRAN-Project-sub026/internal/metrics"
	"github.com/srsran/srsRAN-Project-sub026/internal/upperphylog"
	"github.com/srsran/srsRAN-Project-sub026/phy/executor"
	"github.com/srsran/srsRAN-Project-sub026/phy/grid"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/notifier"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/pdurepo"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/ulfsm"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
	"github.com/srsran/srsRAN-Project-sub026/slot"
)

// Executors collects the non-blocking task dispatch surfaces a Processor
// fans PDU processing out onto, one per channel (pucch, pusch, srs, prach
// executors; the pusch channel-estimator/decoder split is internal to
// PUSCHProcessor and not modelled as a separate executor here).
type Executors struct {
	PUSCH executor.Executor
	PUCCH executor.Executor
	SRS   executor.Executor
	PRACH executor.Executor
}

// Kernels collects every channel-kernel collaborator a Processor drives.
type Kernels struct {
	PUSCH        PUSCHProcessor
	PUCCH        PUCCHProcessor
	PRACH        PRACHDetector
	SRSSequences srs.SequenceGenerator
	SRSTimeAlign srs.TimeAlignmentEstimator
	// SRSMaxSupportedPRB bounds the SRS estimator's admissible sequence
	// length (TS 38.211 6.4.1.4.3), matching srs.Estimator.MaxSupportedPRB.
	SRSMaxSupportedPRB int
}

// Resources collects the pool-backed per-slot resources a Processor draws
// its rate-matching buffers and decoded payload spans from.
type Resources struct {
	RateBuffers RateMatchBufferPool
	Payloads    PayloadPool
}

// activeSlot is the bundle of state one admitted slot contributes to a
// Processor, replaced wholesale by each GetPDURepository/Release cycle.
type activeSlot struct {
	repo *pdurepo.Repository
	grid grid.SharedGrid
	// admissionID correlates this slot's dispatch and discard log lines
	// across the goroutines its tasks run on, mirroring caddy's
	// per-request UUID (caddyhttp/requestid).
	admissionID uuid.UUID
}

// Processor is the per-slot uplink orchestrator: it owns one FSM, the
// currently admitted repository and its bound resource grid, and drives
// PRACH, PUSCH, PUCCH and SRS dispatch from symbol-triggered events,
// mirroring srsran::uplink_processor_impl.
type Processor struct {
	NumerologyIdx int

	fsm   *ulfsm.FSM
	state atomic.Pointer[activeSlot]

	kernels   Kernels
	executors Executors
	resources Resources
	estimator srs.Estimator

	Notifier notifier.RxResultsNotifier
	Tap      PHYTap // nil if no tap is configured

	NofRxPorts int
	Metrics    *metrics.Collectors
}

// New builds an idle Processor.
func New(numerologyIdx int, kernels Kernels, execs Executors, res Resources, nofRxPorts int, notif notifier.RxResultsNotifier) *Processor {
	return &Processor{
		NumerologyIdx: numerologyIdx,
		fsm:           ulfsm.New(),
		kernels:       kernels,
		executors:     execs,
		resources:     res,
		estimator: srs.Estimator{
			Sequences:       kernels.SRSSequences,
			TimeAlignment:   kernels.SRSTimeAlign,
			MaxSupportedPRB: kernels.SRSMaxSupportedPRB,
		},
		NofRxPorts: nofRxPorts,
		Notifier:   notif,
	}
}

// FSM exposes the processor's state machine for tests and diagnostics.
func (p *Processor) FSM() *ulfsm.FSM { return p.fsm }

// RepositoryHandle is the RAII-style admission handle GetPDURepository
// returns: an exclusive writer into one slot's PDU repository, closed by
// Release (explicitly, or the caller's own defer), at which point the
// processor publishes the bound resource grid for symbol-triggered
// dispatch.
type RepositoryHandle struct {
	proc     *Processor
	repo     *pdurepo.Repository
	released bool
}

func (h *RepositoryHandle) recordAdmitted(kind string, err error) error {
	if err == nil && h.proc.Metrics != nil {
		h.proc.Metrics.PDUsAdmitted.WithLabelValues(kind).Inc()
	}
	return err
}

// AddPUSCH admits a PUSCH PDU for this slot.
func (h *RepositoryHandle) AddPUSCH(pdu pusch.PDU) error {
	return h.recordAdmitted("pusch", h.repo.AddPUSCH(pdu))
}

// AddPUCCH admits a PUCCH PDU for this slot.
func (h *RepositoryHandle) AddPUCCH(pdu pucch.PDU) error {
	return h.recordAdmitted("pucch", h.repo.AddPUCCH(pdu))
}

// AddSRS admits an SRS descriptor for this slot.
func (h *RepositoryHandle) AddSRS(rnti uint16, cfg srs.ResourceConfiguration) error {
	return h.recordAdmitted("srs", h.repo.AddSRS(pdurepo.SRSDescriptor{RNTI: rnti, Config: cfg}))
}

// Release closes the admission window and binds the grid for later
// symbol-triggered dispatch. Returns false if the handle or its repository
// was already released or the FSM is no longer accepting PDUs; in that case
// no grid is bound, and later rx-symbol calls raise no discards for the
// queued PDUs. Release allocates no grid itself: the grid is the one passed
// to GetPDURepository.
func (h *RepositoryHandle) Release() bool {
	if h.released {
		return false
	}
	sg, ok := h.repo.FinishAddingPDUs()
	if !ok {
		return false
	}
	h.released = true
	h.proc.state.Store(&activeSlot{repo: h.repo, grid: sg, admissionID: uuid.New()})
	return true
}

// GetPDURepository opens the admission window for sp against reader
// (backed by the grid identified by gridID in pool). Returns ok=false if
// this processor is not idle (e.g. a repository was already requested for
// a slot that has not yet been released: a second request before the
// first is released is rejected).
func (p *Processor) GetPDURepository(sp slot.Point, reader grid.Reader, pool grid.Pool, gridID int) (*RepositoryHandle, bool) {
	repo, ok := pdurepo.NewRepository(p.fsm, int64(sp.SystemSlot()), reader, pool, gridID)
	if !ok {
		return nil, false
	}
	return &RepositoryHandle{proc: p, repo: repo}, true
}

func (p *Processor) recordDispatched(kind string) {
	if p.Metrics != nil {
		p.Metrics.PDUsDispatched.WithLabelValues(kind).Inc()
	}
}

func (p *Processor) recordDiscarded(kind string) {
	if p.Metrics != nil {
		p.Metrics.PDUsDiscarded.WithLabelValues(kind).Inc()
	}
}

func (p *Processor) recordRejection(executorName string) {
	if p.Metrics != nil {
		p.Metrics.ExecutorRejections.WithLabelValues(executorName).Inc()
	}
}

// reportFSMGauges publishes the FSM's current in-execution/in-queue PDU
// counts, called after each batch of dispatch decisions settles.
func (p *Processor) reportFSMGauges() {
	if p.Metrics == nil {
		return
	}
	numerology := strconv.Itoa(p.NumerologyIdx)
	p.Metrics.FSMInExecution.WithLabelValues(numerology).Set(float64(p.fsm.ExecCount()))
	p.Metrics.FSMInQueue.WithLabelValues(numerology).Set(float64(p.fsm.QueueCount()))
}

// HandleRxSymbol fans out every PDU whose allocation ends at
// endSymbolIndex onto its channel's executor. Called once per received
// OFDM symbol by the radio-unit-facing collaborator. A false valid flag
// still drives dispatch (kernels observe garbage samples and are expected
// to fail their own internal checks) — this core does not special-case
// symbol validity beyond its documented discard paths.
func (p *Processor) HandleRxSymbol(endSymbolIndex int, valid bool) {
	if !p.fsm.StartHandleRxSymbol() {
		return
	}
	defer p.fsm.FinishHandleRxSymbol()

	st := p.state.Load()
	if st == nil {
		upperphylog.Assert(false, "slotproc: locked rx-symbol path with no admitted repository")
		return
	}

	systemSlot := int(p.fsm.ConfiguredSlot())
	if endSymbolIndex == 0 {
		p.resources.RateBuffers.AdvanceSlot(systemSlot)
	}

	puschPDUs := st.repo.PUSCHAt(endSymbolIndex)
	pucchPDUs := st.repo.PUCCHAt(endSymbolIndex)
	batches := st.repo.Format1BatchesAt(endSymbolIndex)
	srsDescs := st.repo.SRSAt(endSymbolIndex)

	if p.Tap != nil {
		if len(puschPDUs) == 0 && len(pucchPDUs) == 0 && len(batches) == 0 && len(srsDescs) == 0 {
			p.Tap.HandleQuietGrid(st.grid.Reader(), systemSlot)
		} else {
			tapSRS := make([]SRSDescriptor, len(srsDescs))
			for i, d := range srsDescs {
				tapSRS[i] = SRSDescriptor{RNTI: d.RNTI, Config: d.Config}
			}
			p.Tap.HandleULSymbol(st.grid.Reader(), systemSlot, endSymbolIndex, puschPDUs, pucchPDUs, batches, tapSRS)
		}
	}

	for _, pdu := range puschPDUs {
		p.dispatchPUSCH(pdu, st.grid)
	}
	for _, pdu := range pucchPDUs {
		p.dispatchPUCCH(pdu, st.grid)
	}
	for _, batch := range batches {
		p.dispatchPUCCHBatch(batch, st.grid)
	}
	for _, desc := range srsDescs {
		p.dispatchSRS(desc, st.grid)
	}

	// The admission window's own grid reference is scoped to the slot:
	// once the final symbol has been handled, no further task will ever
	// take out a fresh copy, so the admission's reference is released
	// here (every already-dispatched task still holds its own copy until
	// its kernel invocation completes).
	if endSymbolIndex == pdurepo.Buckets()-1 {
		st.grid.Release()
		p.state.Store(nil)
	}
	p.reportFSMGauges()
}

// puschNotifierAdapter enforces the control-before-data ordering
// invariant on top of the raw RxResultsNotifier.
type puschNotifierAdapter struct {
	proc         *Processor
	pdu          pusch.PDU
	uciDelivered bool
}

func (a *puschNotifierAdapter) OnUCI(r notifier.PUSCHControlResult) {
	a.uciDelivered = true
	a.proc.Notifier.OnNewPUSCHResultsControl(r)
}

func (a *puschNotifierAdapter) OnSCH(r notifier.PUSCHDataResult) {
	if a.pdu.HasUCI() {
		upperphylog.Assert(a.uciDelivered, "slotproc: pusch data result delivered before control result", zap.Uint16("rnti", a.pdu.RNTI))
	}
	a.proc.Notifier.OnNewPUSCHResultsData(r)
}

func (p *Processor) dispatchPUSCH(pdu pusch.PDU, sharedGrid grid.SharedGrid) {
	if !p.fsm.OnCreatePDUTask() {
		return
	}

	systemSlot := int(p.fsm.ConfiguredSlot())
	buf, bufOK := p.resources.RateBuffers.Reserve(systemSlot, pdu.HARQID, pdu.NofCodeblocks(), pdu.Codeword.NewData)
	payload, payOK := p.resources.Payloads.Reserve(int(pdu.TBSizeBytes))

	if !bufOK || !payOK {
		if bufOK {
			buf.Release()
		}
		p.discardPUSCH(pdu)
		p.recordDiscarded("pusch")
		p.fsm.OnFinishProcessingPDU()
		return
	}

	g := sharedGrid.Copy()
	task := func() {
		defer g.Release()
		defer buf.Release()
		defer p.fsm.OnFinishProcessingPDU()
		notify := &puschNotifierAdapter{proc: p, pdu: pdu}
		p.kernels.PUSCH.Process(notify, payload, buf, g.Reader(), pdu)
	}

	if !p.executors.PUSCH.Execute(task) {
		g.Release()
		buf.Release()
		p.discardPUSCH(pdu)
		p.recordRejection("pusch")
		p.fsm.OnFinishProcessingPDU()
		return
	}
	p.recordDispatched("pusch")
}

func (p *Processor) discardPUSCH(pdu pusch.PDU) {
	if pdu.HasUCI() {
		p.Notifier.OnNewPUSCHResultsControl(notifier.DiscardedPUSCHControl(pdu))
	}
	p.Notifier.OnNewPUSCHResultsData(notifier.DiscardedPUSCHData(pdu))
}

func (p *Processor) dispatchPUCCH(pdu pucch.PDU, sharedGrid grid.SharedGrid) {
	if !p.fsm.OnCreatePDUTask() {
		return
	}

	g := sharedGrid.Copy()
	task := func() {
		defer g.Release()
		defer p.fsm.OnFinishProcessingPDU()
		result := p.kernels.PUCCH.Process(g.Reader(), pdu)
		p.Notifier.OnNewPUCCHResults(result)
	}

	if !p.executors.PUCCH.Execute(task) {
		g.Release()
		p.Notifier.OnNewPUCCHResults(notifier.DiscardedPUCCH(pdu))
		p.recordRejection("pucch")
		p.fsm.OnFinishProcessingPDU()
		return
	}
	p.recordDispatched("pucch")
}

func (p *Processor) dispatchPUCCHBatch(batch *pucch.Format1Batch, sharedGrid grid.SharedGrid) {
	if !p.fsm.OnCreatePDUTask() {
		return
	}

	g := sharedGrid.Copy()
	task := func() {
		defer g.Release()
		defer p.fsm.OnFinishProcessingPDU()
		results := p.kernels.PUCCH.ProcessFormat1Batch(g.Reader(), batch)
		for _, r := range results {
			p.Notifier.OnNewPUCCHResults(r)
		}
	}

	if !p.executors.PUCCH.Execute(task) {
		g.Release()
		for _, e := range batch.Entries {
			p.Notifier.OnNewPUCCHResults(notifier.PUCCHResult{RNTI: e.RNTI, Status: notifier.UCIStatusUnknown})
		}
		p.recordRejection("pucch")
		p.fsm.OnFinishProcessingPDU()
		return
	}
	p.recordDispatched("pucch_f1_batch")
}

// srsGridReaderAdapter exposes a grid.Reader through the narrower
// srs.GridReader interface the estimator consumes.
type srsGridReaderAdapter struct {
	r grid.Reader
}

func (a srsGridReaderAdapter) GetSymbol(dst []complex64, rxPort, symbol, k0Bar, stride int) {
	a.r.Get(dst, rxPort, symbol, k0Bar, stride)
}

func (p *Processor) dispatchSRS(desc pdurepo.SRSDescriptor, sharedGrid grid.SharedGrid) {
	if !p.fsm.OnCreatePDUTask() {
		return
	}

	g := sharedGrid.Copy()
	task := func() {
		defer g.Release()
		defer p.fsm.OnFinishProcessingPDU()
		start := time.Now()
		result := p.estimator.Estimate(srsGridReaderAdapter{g.Reader()}, desc.Config, p.NofRxPorts)
		if p.Metrics != nil {
			p.Metrics.SRSEstimateLatency.Observe(time.Since(start).Seconds())
		}
		p.Notifier.OnNewSRSResults(notifier.SRSResult{RNTI: desc.RNTI, Result: result})
	}

	if !p.executors.SRS.Execute(task) {
		g.Release()
		p.Notifier.OnNewSRSResults(notifier.SRSResult{RNTI: desc.RNTI})
		p.recordRejection("srs")
		p.fsm.OnFinishProcessingPDU()
		return
	}
	p.recordDispatched("srs")
}

// ProcessPRACH detects preambles in buf without touching the slot FSM
// beyond the independent pending-PRACH-task counter, since PRACH flows
// through a symbol-independent channel.
func (p *Processor) ProcessPRACH(buf PRACHBuffer, ctx PRACHContext) {
	if p.fsm.Stopped() {
		return
	}
	p.fsm.IncrementPendingPRACH()
	task := func() {
		defer p.fsm.DecrementPendingPRACH()
		result := p.kernels.PRACH.Detect(buf, ctx)
		p.Notifier.OnNewPRACHResults(result)
	}

	if !p.executors.PRACH.Execute(task) {
		p.fsm.DecrementPendingPRACH()
		p.Notifier.OnNewPRACHResults(notifier.PRACHResult{SlotSystemSlot: ctx.SystemSlot})
		p.recordRejection("prach")
		return
	}
	p.recordDispatched("prach")
}

// DiscardSlot aborts every PDU still queued for the currently admitted
// slot, emitting discarded sentinels for each and returning the FSM to
// idle. A no-op if the FSM cannot be locked for discard (e.g. nothing is
// pending, or it is already locked/stopped).
func (p *Processor) DiscardSlot() {
	if !p.fsm.StartDiscardSlot() {
		return
	}

	st := p.state.Load()
	if st != nil {
		upperphylog.Log().Warn("discarding admitted slot", zap.Stringer("admission_id", st.admissionID))
		for sym := 0; sym < pdurepo.Buckets(); sym++ {
			for _, pdu := range st.repo.PUSCHAt(sym) {
				p.discardPUSCH(pdu)
				p.recordDiscarded("pusch")
				p.fsm.OnFinishProcessingPDU()
			}
			for _, pdu := range st.repo.PUCCHAt(sym) {
				p.Notifier.OnNewPUCCHResults(notifier.DiscardedPUCCH(pdu))
				p.recordDiscarded("pucch")
				p.fsm.OnFinishProcessingPDU()
			}
			for _, batch := range st.repo.Format1BatchesAt(sym) {
				for _, e := range batch.Entries {
					p.Notifier.OnNewPUCCHResults(notifier.PUCCHResult{RNTI: e.RNTI, Status: notifier.UCIStatusUnknown})
				}
				p.recordDiscarded("pucch_f1_batch")
				p.fsm.OnFinishProcessingPDU()
			}
			for _, desc := range st.repo.SRSAt(sym) {
				p.Notifier.OnNewSRSResults(notifier.SRSResult{RNTI: desc.RNTI})
				p.recordDiscarded("srs")
				p.fsm.OnFinishProcessingPDU()
			}
		}
		st.grid.Release()
		p.state.Store(nil)
	}

	p.fsm.FinishDiscardSlot()
	p.reportFSMGauges()
}

// Stop drains outstanding work and transitions the FSM to its terminal
// state; after it returns, no further admission, dispatch, or
// notification occurs.
func (p *Processor) Stop() {
	p.fsm.Stop()
}
