package slotproc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/phy/executor"
	"github.com/srsran/srsRAN-Project-sub026/phy/grid"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/notifier"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
	"github.com/srsran/srsRAN-Project-sub026/slot"
)

// fakeGridReader hands back zeroed samples; scenarios in this file drive
// the FSM/dispatch plumbing, not kernel numerics.
type fakeGridReader struct{}

func (fakeGridReader) Get(dst []complex64, port, symbol, k0, stride int) {}

type fakeGridPool struct{ released []int }

func (p *fakeGridPool) Release(id int) { p.released = append(p.released, id) }

// fakePUSCH decodes nothing: it reports CRC-pass with the TB size's worth
// of zero bytes and, if UCI is configured, a valid control result first.
type fakePUSCH struct{ processed int }

func (f *fakePUSCH) IsValid(pdu pusch.PDU) bool { return true }
func (f *fakePUSCH) Process(notify PUSCHProcessorNotifier, payload []byte, buf RateMatchBuffer, reader grid.Reader, pdu pusch.PDU) {
	f.processed++
	if pdu.HasUCI() {
		notify.OnUCI(notifier.PUSCHControlResult{RNTI: pdu.RNTI, HARQID: pdu.HARQID, Status: notifier.UCIStatusValid})
	}
	notify.OnSCH(notifier.PUSCHDataResult{RNTI: pdu.RNTI, HARQID: pdu.HARQID, CRCPassed: true, Payload: payload})
}

type fakePUCCH struct{}

func (fakePUCCH) IsValid(pdu pucch.PDU) bool { return true }
func (fakePUCCH) Process(reader grid.Reader, pdu pucch.PDU) notifier.PUCCHResult {
	return notifier.PUCCHResult{RNTI: pdu.RNTI(), Status: notifier.UCIStatusValid}
}
func (fakePUCCH) ProcessFormat1Batch(reader grid.Reader, batch *pucch.Format1Batch) []notifier.PUCCHResult {
	out := make([]notifier.PUCCHResult, len(batch.Entries))
	for i, e := range batch.Entries {
		out[i] = notifier.PUCCHResult{RNTI: e.RNTI, Status: notifier.UCIStatusValid}
	}
	return out
}

type fakePRACH struct{}

func (fakePRACH) IsValid(ctx PRACHContext) bool { return true }
func (fakePRACH) Detect(buf PRACHBuffer, ctx PRACHContext) notifier.PRACHResult {
	return notifier.PRACHResult{SlotSystemSlot: ctx.SystemSlot, Detected: true}
}

type fakeRateBufferPool struct {
	exhausted bool
	advanced  []int
}

type fakeRateBuffer struct{ released *bool }

func (b fakeRateBuffer) Release() { *b.released = true }

func (p *fakeRateBufferPool) Reserve(systemSlot int, harqID uint8, nofCB int, newData bool) (RateMatchBuffer, bool) {
	if p.exhausted {
		return nil, false
	}
	released := false
	return fakeRateBuffer{released: &released}, true
}
func (p *fakeRateBufferPool) AdvanceSlot(systemSlot int) { p.advanced = append(p.advanced, systemSlot) }

type fakePayloadPool struct{ exhausted bool }

func (p *fakePayloadPool) Reserve(size int) ([]byte, bool) {
	if p.exhausted {
		return nil, false
	}
	return make([]byte, size), true
}

// inlineExecutor runs every task synchronously on the calling goroutine,
// the simplest Executor that always accepts.
type inlineExecutor struct{}

func (inlineExecutor) Execute(task func()) bool { task(); return true }
func (inlineExecutor) Defer(task func()) bool   { task(); return true }

// rejectingExecutor always refuses, exercising the all-executors-full discard path.
type rejectingExecutor struct{}

func (rejectingExecutor) Execute(task func()) bool { return false }
func (rejectingExecutor) Defer(task func()) bool   { return false }

func newTestProcessor(puschExec, pucchExec, srsExec, prachExec executor.Executor, collector *fakeCollector) (*Processor, *fakeRateBufferPool, *fakePayloadPool) {
	rateBufs := &fakeRateBufferPool{}
	payloads := &fakePayloadPool{}
	proc := New(0, Kernels{
		PUSCH: &fakePUSCH{},
		PUCCH: fakePUCCH{},
		PRACH: fakePRACH{},
	}, Executors{
		PUSCH: puschExec,
		PUCCH: pucchExec,
		SRS:   srsExec,
		PRACH: prachExec,
	}, Resources{
		RateBuffers: rateBufs,
		Payloads:    payloads,
	}, 2, collector)
	return proc, rateBufs, payloads
}

// fakeCollector is a notifier.RxResultsNotifier recording every result for
// assertions.
type fakeCollector struct {
	prach   []notifier.PRACHResult
	control []notifier.PUSCHControlResult
	data    []notifier.PUSCHDataResult
	pucch   []notifier.PUCCHResult
	srsRes  []notifier.SRSResult
}

func (c *fakeCollector) OnNewPRACHResults(r notifier.PRACHResult)             { c.prach = append(c.prach, r) }
func (c *fakeCollector) OnNewPUSCHResultsControl(r notifier.PUSCHControlResult) {
	c.control = append(c.control, r)
}
func (c *fakeCollector) OnNewPUSCHResultsData(r notifier.PUSCHDataResult) { c.data = append(c.data, r) }
func (c *fakeCollector) OnNewPUCCHResults(r notifier.PUCCHResult)         { c.pucch = append(c.pucch, r) }
func (c *fakeCollector) OnNewSRSResults(r notifier.SRSResult)             { c.srsRes = append(c.srsRes, r) }

func testSlot() slot.Point { return slot.New(1, 0, 0) }

// Scenario 1: admit one PUSCH (start=0, length=14), release, then drive
// handle_rx_symbol(13, true). Expect exactly one data result.
func TestScenario1_PUSCHRoundTrip(t *testing.T) {
	collector := &fakeCollector{}
	proc, _, _ := newTestProcessor(inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, collector)

	pool := &fakeGridPool{}
	h, ok := proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 1)
	require.True(t, ok)

	pdu := pusch.PDU{
		RNTI: 17, HARQID: 3, TBSizeBytes: 20,
		Allocation: pusch.Allocation{StartSymbol: 0, NofSymbols: 14, StartRB: 0, NofRB: 25},
	}
	require.NoError(t, h.AddPUSCH(pdu))
	require.True(t, h.Release())

	proc.HandleRxSymbol(13, true)

	require.Len(t, collector.data, 1)
	require.True(t, collector.data[0].CRCPassed)
	require.Empty(t, collector.control)
}

// Scenario 2: two PUCCH-F1 PDUs sharing a common resource merge into one
// batch task producing two results.
func TestScenario2_PUCCHFormat1Batch(t *testing.T) {
	collector := &fakeCollector{}
	proc, _, _ := newTestProcessor(inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, collector)

	pool := &fakeGridPool{}
	h, ok := proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 1)
	require.True(t, ok)

	common := pucch.Common{StartSymbol: 0, NofSymbols: 14, StartRB: 0, NofRB: 1, HoppingRB: -1}
	mk := func(rnti uint16, cs, occ int) pucch.PDU {
		common.RNTI = rnti
		return pucch.PDU{Format: pucch.Format1, Format1: pucch.Format1Config{Common: common, InitialCyclicShift: cs, TimeDomainOCC: occ}}
	}
	require.NoError(t, h.AddPUCCH(mk(10, 0, 0)))
	require.NoError(t, h.AddPUCCH(mk(11, 6, 1)))
	require.True(t, h.Release())

	proc.HandleRxSymbol(13, true)

	require.Len(t, collector.pucch, 2)
	for _, r := range collector.pucch {
		require.NotEqual(t, notifier.UCIStatusUnknown, r.Status)
	}
}

// Scenario 4: admit one PUSCH, discard before any handle_rx_symbol.
// Expect one discarded data result: CRC false, empty payload.
func TestScenario4_DiscardBeforeRxSymbol(t *testing.T) {
	collector := &fakeCollector{}
	proc, _, _ := newTestProcessor(inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, collector)

	pool := &fakeGridPool{}
	h, ok := proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 1)
	require.True(t, ok)

	pdu := pusch.PDU{RNTI: 5, HARQID: 0, TBSizeBytes: 10, Allocation: pusch.Allocation{StartSymbol: 0, NofSymbols: 14}}
	require.NoError(t, h.AddPUSCH(pdu))
	require.True(t, h.Release())

	proc.DiscardSlot()

	require.Len(t, collector.data, 1)
	require.False(t, collector.data[0].CRCPassed)
	require.Empty(t, collector.data[0].Payload)

	require.Equal(t, 1, pool.released[0])
}

// Scenario 5: an executor rejecting every task. One PUSCH and one PUCCH
// admitted; driving one rx-symbol call yields one discarded result each,
// with no kernel invocation.
func TestScenario5_ExecutorRejectsEverything(t *testing.T) {
	collector := &fakeCollector{}
	proc, _, _ := newTestProcessor(rejectingExecutor{}, rejectingExecutor{}, rejectingExecutor{}, rejectingExecutor{}, collector)

	pool := &fakeGridPool{}
	h, ok := proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 1)
	require.True(t, ok)

	pusPDU := pusch.PDU{RNTI: 1, HARQID: 0, TBSizeBytes: 10, Allocation: pusch.Allocation{StartSymbol: 0, NofSymbols: 14}}
	pucPDU := pucch.PDU{Format: pucch.Format0, Format0: pucch.Format0Config{Common: pucch.Common{RNTI: 2, StartSymbol: 0, NofSymbols: 14}}}
	require.NoError(t, h.AddPUSCH(pusPDU))
	require.NoError(t, h.AddPUCCH(pucPDU))
	require.True(t, h.Release())

	proc.HandleRxSymbol(13, true)

	require.Len(t, collector.data, 1)
	require.False(t, collector.data[0].CRCPassed)
	require.Len(t, collector.pucch, 1)
	require.Equal(t, notifier.UCIStatusUnknown, collector.pucch[0].Status)
}

// Scenario 6: requesting a repository for a slot twice without releasing
// the first is rejected.
func TestScenario6_DoubleAdmissionRejected(t *testing.T) {
	collector := &fakeCollector{}
	proc, _, _ := newTestProcessor(inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, collector)

	pool := &fakeGridPool{}
	_, ok := proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 1)
	require.True(t, ok)

	_, ok = proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 2)
	require.False(t, ok)
}

// The resource grid backing a slot returns to the pool once every
// dispatched task (and the admission handle) has released it.
func TestGridReturnsToPoolOnlyAfterAllReferencesRelease(t *testing.T) {
	collector := &fakeCollector{}
	proc, _, _ := newTestProcessor(inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, inlineExecutor{}, collector)

	pool := &fakeGridPool{}
	h, ok := proc.GetPDURepository(testSlot(), fakeGridReader{}, pool, 7)
	require.True(t, ok)

	srsCfg := srs.ResourceConfiguration{
		NofAntennaPorts: 2, NofSymbols: 4, StartSymbol: 10,
		ConfigurationIndex: 0, SequenceID: 0, BandwidthIndex: 0,
		Comb: srs.CombSizeTwo, CombOffset: 0, CyclicShift: 0,
		FreqPosition: 0, FreqShift: 0, FreqHopping: 0,
	}
	require.NoError(t, h.AddSRS(99, srsCfg))
	require.True(t, h.Release())

	require.Empty(t, pool.released)
	proc.HandleRxSymbol(13, true)
	require.Equal(t, []int{7}, pool.released)
}
