package ulfsm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/phy/upper/ulfsm"
)

func TestStartNewSlotFromIdle(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(42))
	require.False(t, f.IsSlotValid(42), "still accepting, so not yet a valid dispatch slot")
}

func TestStartNewSlotFailsWhenNotIdle(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(1))
	require.False(t, f.StartNewSlot(2))
}

func TestAdmissionAndDispatchHappyPath(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(7))
	require.True(t, f.IncrementPendingPDU())
	require.True(t, f.IncrementPendingPDU())
	require.True(t, f.StopAcceptingPDU())

	require.True(t, f.IsSlotValid(7))

	require.True(t, f.StartHandleRxSymbol())
	require.True(t, f.OnCreatePDUTask())
	require.True(t, f.OnCreatePDUTask())
	require.True(t, f.FinishHandleRxSymbol())

	require.True(t, f.OnFinishProcessingPDU())
	require.True(t, f.OnFinishProcessingPDU())

	require.False(t, f.OnFinishProcessingPDU(), "both counters already drained")
}

func TestIncrementPendingPDUFailsAfterAdmissionClosed(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(1))
	require.True(t, f.StopAcceptingPDU())
	require.False(t, f.IncrementPendingPDU())
}

func TestDiscardSlotDrainsWithoutExecution(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(3))
	require.True(t, f.IncrementPendingPDU())
	require.True(t, f.IncrementPendingPDU())
	require.True(t, f.StopAcceptingPDU())

	require.True(t, f.StartDiscardSlot())
	require.True(t, f.OnFinishProcessingPDU())
	require.True(t, f.OnFinishProcessingPDU())
	require.True(t, f.FinishDiscardSlot())

	require.Equal(t, uint32(0), f.State())
}

func TestStartDiscardSlotRejectsWhenExecutionInFlight(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(3))
	require.True(t, f.IncrementPendingPDU())
	require.True(t, f.StopAcceptingPDU())
	require.True(t, f.StartHandleRxSymbol())
	require.True(t, f.OnCreatePDUTask())
	require.True(t, f.FinishHandleRxSymbol())

	require.False(t, f.StartDiscardSlot(), "in-execution count must be zero to discard")
}

func TestStopDrainsThenTerminal(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(9))
	require.True(t, f.IncrementPendingPDU())
	require.True(t, f.StopAcceptingPDU())
	require.True(t, f.StartHandleRxSymbol())
	require.True(t, f.OnCreatePDUTask())
	require.True(t, f.FinishHandleRxSymbol())

	done := make(chan struct{})
	go func() {
		f.Stop()
		close(done)
	}()

	require.True(t, f.OnFinishProcessingPDU())
	<-done
	require.True(t, f.Stopped())

	require.False(t, f.StartNewSlot(10))
	require.False(t, f.IncrementPendingPDU())
}

func TestAcceptingAndLockedNeverBothSet(t *testing.T) {
	f := ulfsm.New()
	require.True(t, f.StartNewSlot(1))
	state := f.State()
	require.False(t, state&0x8000_0000 != 0 && state&0x4000_0000 != 0)
}

func TestPendingPRACHCounter(t *testing.T) {
	f := ulfsm.New()
	f.IncrementPendingPRACH()
	f.IncrementPendingPRACH()
	require.EqualValues(t, 2, f.PendingPRACH())
	f.DecrementPendingPRACH()
	require.EqualValues(t, 1, f.PendingPRACH())
}
