package procpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/phy/upper/notifier"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/slotproc"
	"github.com/srsran/srsRAN-Project-sub026/slot"
)

type nopNotifier struct{}

func (nopNotifier) OnNewPRACHResults(notifier.PRACHResult)               {}
func (nopNotifier) OnNewPUSCHResultsControl(notifier.PUSCHControlResult) {}
func (nopNotifier) OnNewPUSCHResultsData(notifier.PUSCHDataResult)       {}
func (nopNotifier) OnNewPUCCHResults(notifier.PUCCHResult)               {}
func (nopNotifier) OnNewSRSResults(notifier.SRSResult)                   {}

func newDummyProcessor(numerologyIdx int) *slotproc.Processor {
	return slotproc.New(numerologyIdx, slotproc.Kernels{}, slotproc.Executors{}, slotproc.Resources{}, 2, nopNotifier{})
}

func TestGetProcessorRoundRobinsWithinNumerology(t *testing.T) {
	a, b := newDummyProcessor(0), newDummyProcessor(0)
	var procs [nofNumerologies][]*slotproc.Processor
	procs[1] = []*slotproc.Processor{a, b}
	pool := New(procs)

	s0 := slot.New(1, 0, 0)
	s1 := slot.New(1, 0, 2)

	p0, err := pool.GetProcessor(s0)
	require.NoError(t, err)
	p1, err := pool.GetProcessor(s1)
	require.NoError(t, err)
	require.NotSame(t, p0, p1)

	p2, err := pool.GetProcessor(slot.New(1, 0, 4))
	require.NoError(t, err)
	require.Same(t, p0, p2)
}

func TestRecentAssignmentRecallsAdmittingProcessor(t *testing.T) {
	a := newDummyProcessor(1)
	var procs [nofNumerologies][]*slotproc.Processor
	procs[1] = []*slotproc.Processor{a}
	pool := New(procs)

	sp := slot.New(1, 3, 2)
	_, err := pool.GetProcessor(sp)
	require.NoError(t, err)

	require.Same(t, a, pool.RecentAssignment(sp))
}

func TestRecentAssignmentFallsBackToDefaultWhenOverwritten(t *testing.T) {
	a := newDummyProcessor(0)
	def := newDummyProcessor(0)
	var procs [nofNumerologies][]*slotproc.Processor
	procs[0] = []*slotproc.Processor{def, a}
	pool := New(procs)

	// Admit assignmentMemoSize-apart slots so the second overwrites the
	// first's circular memo entry before RecentAssignment is checked.
	sp0 := slot.New(0, 0, 0)
	spOverwrite := sp0.Add(assignmentMemoSize)

	_, err := pool.GetProcessor(sp0)
	require.NoError(t, err)
	_, err = pool.GetProcessor(spOverwrite)
	require.NoError(t, err)

	// sp0's memo slot now reflects spOverwrite, so looking it up again
	// must fall back to the default processor rather than returning a
	// stale assignment for the wrong slot.
	require.Same(t, pool.defaultProcessor, pool.RecentAssignment(sp0))
}

func TestGetProcessorErrorsForUnconfiguredNumerology(t *testing.T) {
	var procs [nofNumerologies][]*slotproc.Processor
	pool := New(procs)
	_, err := pool.GetProcessor(slot.New(2, 0, 0))
	require.Error(t, err)
}
